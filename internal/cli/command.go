package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkondo/kikitori/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kikitori",
		Short: "Japanese Listening Practice Generator",
		Long: `kikitori turns your WaniKani vocabulary into a listening trainer.

It fetches the words you are actively learning, generates practice
sentences with an LLM, narrates them with OpenAI TTS and serves the
result as an offline-capable practice page.

Examples:
  kikitori fetch                  # Pull vocabulary from WaniKani
  kikitori sentences --limit 10   # Generate sentences for 10 words
  kikitori audio                  # Narrate the generated sentences
  kikitori serve                  # Serve the trainer locally`,
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.kikitori.yaml)")
	cmd.PersistentFlags().StringVar(&flags.DataDir, "data-dir", flags.DataDir, "Directory for intermediate pipeline data")
	cmd.PersistentFlags().StringVar(&flags.PWADir, "pwa-dir", flags.PWADir, "Directory holding the trainer page")
	cmd.PersistentFlags().IntVar(&flags.Limit, "limit", 0, "Process at most this many words (0 = all)")

	// Sentence generation flags
	cmd.PersistentFlags().StringVar(&flags.SentenceProvider, "sentence-provider", flags.SentenceProvider, "Sentence provider: openai or gemini")
	cmd.PersistentFlags().StringVar(&flags.SentenceModel, "sentence-model", flags.SentenceModel, "Model for sentence generation")
	cmd.PersistentFlags().StringVar(&flags.BaseURL, "base-url", "", "OpenAI-compatible endpoint for local models (Ollama, LM Studio)")

	// Audio flags
	cmd.PersistentFlags().StringVar(&flags.AudioProvider, "audio-provider", flags.AudioProvider, "Audio provider: openai or voicevox")
	cmd.PersistentFlags().StringVar(&flags.AudioFallback, "audio-fallback", "", "Fallback audio provider when the primary fails")
	cmd.PersistentFlags().StringVarP(&flags.AudioFormat, "format", "f", flags.AudioFormat, "Audio format (wav or mp3)")
	cmd.PersistentFlags().Float64Var(&flags.AudioDelay, "delay", 0, "Seconds to pause between TTS calls")
	cmd.PersistentFlags().StringVar(&flags.VoicevoxURL, "voicevox-url", flags.VoicevoxURL, "VOICEVOX engine endpoint")
	cmd.PersistentFlags().IntVar(&flags.VoicevoxSpeaker, "voicevox-speaker", flags.VoicevoxSpeaker, "VOICEVOX speaker style id")

	// OpenAI TTS flags
	cmd.PersistentFlags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	cmd.PersistentFlags().StringVar(&flags.OpenAIVoice, "openai-voice", flags.OpenAIVoice, "OpenAI voice: alloy, ash, ballad, coral, echo, fable, onyx, nova, sage, shimmer, verse")
	cmd.PersistentFlags().Float64Var(&flags.OpenAISpeed, "openai-speed", flags.OpenAISpeed, "OpenAI speech speed (0.25 to 4.0, may be ignored by gpt-4o-mini-tts)")
	cmd.PersistentFlags().StringVar(&flags.OpenAIInstruction, "openai-instruction", "", "Voice instructions for gpt-4o-mini-tts model")

	// Image flags
	cmd.PersistentFlags().StringVar(&flags.ImageModel, "image-model", flags.ImageModel, "OpenAI image model: dall-e-2 or dall-e-3")
	cmd.PersistentFlags().StringVar(&flags.ImageSize, "image-size", flags.ImageSize, "Image size: 256x256, 512x512, 1024x1024")

	// Serve flags
	cmd.PersistentFlags().StringVar(&flags.Addr, "addr", flags.Addr, "Listen address for the local server")
	cmd.PersistentFlags().StringVar(&flags.CacheVersion, "cache-version", flags.CacheVersion, "Offline cache version identifier")
	cmd.PersistentFlags().StringVar(&flags.CacheFile, "cache-file", "", "SQLite file for a persistent offline cache (default in-memory)")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("data.directory", cmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("pwa.directory", cmd.PersistentFlags().Lookup("pwa-dir"))
	viper.BindPFlag("sentence.provider", cmd.PersistentFlags().Lookup("sentence-provider"))
	viper.BindPFlag("sentence.model", cmd.PersistentFlags().Lookup("sentence-model"))
	viper.BindPFlag("sentence.base_url", cmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("audio.provider", cmd.PersistentFlags().Lookup("audio-provider"))
	viper.BindPFlag("audio.fallback", cmd.PersistentFlags().Lookup("audio-fallback"))
	viper.BindPFlag("audio.format", cmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("audio.voicevox_url", cmd.PersistentFlags().Lookup("voicevox-url"))
	viper.BindPFlag("audio.voicevox_speaker", cmd.PersistentFlags().Lookup("voicevox-speaker"))
	viper.BindPFlag("audio.openai_model", cmd.PersistentFlags().Lookup("openai-model"))
	viper.BindPFlag("audio.openai_voice", cmd.PersistentFlags().Lookup("openai-voice"))
	viper.BindPFlag("audio.openai_speed", cmd.PersistentFlags().Lookup("openai-speed"))
	viper.BindPFlag("audio.openai_instruction", cmd.PersistentFlags().Lookup("openai-instruction"))
	viper.BindPFlag("image.model", cmd.PersistentFlags().Lookup("image-model"))
	viper.BindPFlag("image.size", cmd.PersistentFlags().Lookup("image-size"))
	viper.BindPFlag("serve.addr", cmd.PersistentFlags().Lookup("addr"))
	viper.BindPFlag("serve.cache_version", cmd.PersistentFlags().Lookup("cache-version"))
	viper.BindPFlag("serve.cache_file", cmd.PersistentFlags().Lookup("cache-file"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".kikitori" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".kikitori")
	}

	// Environment variables
	viper.SetEnvPrefix("KIKITORI")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("openai.api_key")
}

// GetWaniKaniKey retrieves the WaniKani API token from environment or config
func GetWaniKaniKey() string {
	if key := os.Getenv("WANIKANI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("wanikani.api_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("gemini.api_key")
}
