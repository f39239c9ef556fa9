package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *viper.Viper

func init() {
	Conf = viper.New()

	// defaults
	Conf.SetTypeByDefaultValue(true)
	Conf.SetDefault("debug", true)
	Conf.SetDefault("appName", "EduMali")
	Conf.SetDefault("schoolName", "Complexe Scolaire EduMali")
	Conf.SetDefault("defaultFromEmail", "noreply@localhost")

	// record store
	Conf.SetDefault("storeURL", "http://127.0.0.1:8090")
	Conf.SetDefault("storeToken", "")
	Conf.SetDefault("storeIdentity", "")
	Conf.SetDefault("storePassword", "")
	Conf.SetDefault("storeTimeout", 30*time.Second)

	// windowed-fetch policy: past these row counts aggregators load a
	// recent window instead of the full collection
	Conf.SetDefault("attendanceWindowThreshold", 1000)
	Conf.SetDefault("attendanceWindowDays", 30)
	Conf.SetDefault("paymentWindowThreshold", 2000)
	Conf.SetDefault("paymentWindowMonths", 12)
	Conf.SetDefault("gradeWindowThreshold", 1500)

	// salary rollover fires from this day of the month onwards
	Conf.SetDefault("rolloverDay", 28)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case strings.ToUpper("TEST"):
		Conf.SetDefault("testMode", true)
	}
	Conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	Conf.AutomaticEnv()
}
