package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile string
	DataDir string
	PWADir  string
	Limit   int

	// Sentence generation flags
	SentenceProvider string
	SentenceModel    string
	BaseURL          string

	// Audio flags
	AudioProvider   string
	AudioFallback   string
	AudioFormat     string
	AudioDelay      float64
	VoicevoxURL     string
	VoicevoxSpeaker int

	// OpenAI TTS flags
	OpenAIModel       string
	OpenAIVoice       string
	OpenAISpeed       float64
	OpenAIInstruction string

	// Image flags
	ImageModel string
	ImageSize  string

	// Serve flags
	Addr         string
	CacheVersion string
	CacheFile    string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		DataDir:          "data",
		PWADir:           "pwa",
		SentenceProvider: "openai",
		SentenceModel:    "gpt-4o-mini",
		AudioProvider:    "openai",
		AudioFormat:      "mp3",
		VoicevoxURL:      "http://localhost:50021",
		VoicevoxSpeaker:  1,
		OpenAIModel:      "gpt-4o-mini-tts",
		OpenAIVoice:      "nova",
		OpenAISpeed:      0.9,
		ImageModel:       "dall-e-3",
		ImageSize:        "1024x1024",
		Addr:             ":8000",
		CacheVersion:     "v1",
	}
}
