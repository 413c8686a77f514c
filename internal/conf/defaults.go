package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig sets the default configuration values for viper.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Main configuration
	viper.SetDefault("main.name", "VoiceCorpus")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "voicecorpus.log")

	// Output configuration
	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "voicecorpus.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "voicecorpus")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "voicecorpus")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	// Review assignment configuration
	viper.SetDefault("review.pagesize", 1000)
	viper.SetDefault("review.contributioncap", 3)
	viper.SetDefault("review.cachettl", 5*time.Minute)
}
