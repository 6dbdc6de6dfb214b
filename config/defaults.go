package config

const (
	DefaultOllamaHost    = "http://localhost:11434"
	DefaultModelName     = "llama3.1:latest"
	DefaultMaxToolRounds = 8
)

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/mealplan",
	}
}

func DefaultToolsConfig() ToolsConfig {
	return ToolsConfig{
		MealNotesLimit:      1,
		RecentRequestsLimit: 1,
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Model: ModelConfig{
			Provider: ProviderOllama,
			Host:     DefaultOllamaHost,
			Name:     DefaultModelName,
		},
		Tools: DefaultToolsConfig(),
		Session: SessionConfig{
			MaxToolRounds: DefaultMaxToolRounds,
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# Meal Planner System Configuration
# Location: ~/.config/mealplan/settings.toml
# This file uses TOML format: https://toml.io

# Directory where the database, debug log and user config are stored
data_directory = "~/.local/share/mealplan"
`
}

func GenerateUserConfigTemplate() string {
	return `# Meal Planner User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[model]
# One of: ollama, openai, anthropic
provider = "ollama"

# Server URL (ollama) or API base URL override (openai, anthropic)
host = "http://localhost:11434"

# Model used for every round. It must support tool calling.
name = "llama3.1:latest"

# API key for openai or anthropic (or set MEALPLAN_API_KEY)
# api_key = ""

[kitchen]
# Ingredients you already have
pantry = []

# Cooking equipment available
equipment = []

[tools]
# How many times per run the model may read notes on past plans
meal_notes_limit = 1

# How many times per run the model may read your last session's requests
recent_requests_limit = 1

# Nutrition lookup (not implemented yet)
food_lookup = false

# Cap on tool calls per minute across all tools, 0 disables
calls_per_minute = 0

# Answer calls to unknown tools with a hint instead of ignoring them
report_unknown = false

[session]
# Consecutive tool rounds allowed before the final answer is requested
max_tool_rounds = 8
`
}
