package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeoutSeconds == 0 {
		cfg.Server.RequestTimeoutSeconds = 60
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/db/knowledgebase.db"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "./data/indices/vectors.bin"
	}
	if cfg.Storage.KeywordIndexPath == "" {
		cfg.Storage.KeywordIndexPath = "./data/indices/keyword"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1536
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.TimeoutSeconds == 0 {
		cfg.Embedding.TimeoutSeconds = 30
	}
	if cfg.Answer.Provider == "" {
		cfg.Answer.Provider = "openai"
	}
	if cfg.Answer.APIKeyEnv == "" {
		cfg.Answer.APIKeyEnv = defaultAnswerKeyEnv(cfg.Answer.Provider)
	}
	if cfg.Answer.Temperature == 0 {
		cfg.Answer.Temperature = 0.2
	}
	if cfg.Answer.MaxTokens == 0 {
		cfg.Answer.MaxTokens = 1024
	}
	if cfg.Answer.TimeoutSeconds == 0 {
		cfg.Answer.TimeoutSeconds = 30
	}
	if cfg.Answer.MaxRetries == 0 {
		cfg.Answer.MaxRetries = 3
	}
	if cfg.Answer.InitialBackoffMS == 0 {
		cfg.Answer.InitialBackoffMS = 1000
	}
	if cfg.Answer.MaxBackoffMS == 0 {
		cfg.Answer.MaxBackoffMS = 8000
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 4
	}
	if cfg.Retrieval.ChunkSize == 0 {
		cfg.Retrieval.ChunkSize = 1000
	}
	if cfg.Retrieval.ChunkOverlap == 0 {
		cfg.Retrieval.ChunkOverlap = 200
	}
	if cfg.Retrieval.PromptBudget == 0 {
		cfg.Retrieval.PromptBudget = 12000
	}
	if cfg.Sources.PerSourceTimeoutSeconds == 0 {
		cfg.Sources.PerSourceTimeoutSeconds = 10
	}
	if cfg.Sources.WebSearch.APIKeyEnv == "" {
		cfg.Sources.WebSearch.APIKeyEnv = "GOOGLE_API_KEY"
	}
	if cfg.Sources.WebSearch.EngineIDEnv == "" {
		cfg.Sources.WebSearch.EngineIDEnv = "GOOGLE_CUSTOM_SEARCH_CX"
	}
	if cfg.Sources.WebSearch.MaxResults == 0 {
		cfg.Sources.WebSearch.MaxResults = 5
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".xlsx"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}

// defaultAnswerKeyEnv returns the conventional API key environment variable
// for an answer provider.
func defaultAnswerKeyEnv(p string) string {
	switch p {
	case "claude":
		return "ANTHROPIC_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}
