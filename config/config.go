package config

import (
	"os"
	"strconv"
	"time"
)

// Config is assembled once at startup from the environment and injected
// into the components that need it.
type Config struct {
	ListenAddr string
	DBPath     string

	// Model-serving endpoints. Empty endpoints disable the corresponding
	// capability (the detector then falls back to the local cascade).
	DetectorEndpoint        string
	FaceClassifierEndpoint  string
	VoiceClassifierEndpoint string
	CascadeFile             string

	// Optional sinks. Empty values leave them disabled.
	KafkaBroker   string
	ArchiveTable  string
	ValkeyAddress string

	OpenAIKey    string
	SummaryModel string

	Policy Policy
}

// Policy carries the heuristic thresholds used by the analytics and
// warning-sign components. Defaults are the observed production values;
// whether they should be clinically validated remains open.
type Policy struct {
	PositiveThreshold float64
	NegativeThreshold float64

	NegativeCompoundFloor float64 // ConsistentlyNegative: compound below this counts
	NegativeCountTrigger  int     // ConsistentlyNegative: records needed to fire
	DropDelta             float64 // SentimentDrop: recent mean this far below older mean
	DropMinRecords        int     // SentimentDrop: minimum records in window
	HighFrequencyTrigger  int     // HighFrequency: window count above this fires

	FacePaddingRatio float64
	WarningWindow    time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		PositiveThreshold:     0.05,
		NegativeThreshold:     -0.05,
		NegativeCompoundFloor: -0.3,
		NegativeCountTrigger:  5,
		DropDelta:             0.3,
		DropMinRecords:        6,
		HighFrequencyTrigger:  20,
		FacePaddingRatio:      0.2,
		WarningWindow:         7 * 24 * time.Hour,
	}
}

func Load() Config {
	return Config{
		ListenAddr:              getEnv("LISTEN_ADDR", ":8000"),
		DBPath:                  getEnv("DB_PATH", "echomind.db"),
		DetectorEndpoint:        os.Getenv("DETECTOR_ENDPOINT"),
		FaceClassifierEndpoint:  os.Getenv("FACE_CLASSIFIER_ENDPOINT"),
		VoiceClassifierEndpoint: os.Getenv("VOICE_CLASSIFIER_ENDPOINT"),
		CascadeFile:             getEnv("CASCADE_FILE", "facefinder"),
		KafkaBroker:             os.Getenv("KAFKA_BROKER"),
		ArchiveTable:            os.Getenv("ARCHIVE_TABLE"),
		ValkeyAddress:           os.Getenv("VALKEY_INIT_ADDRESS"),
		OpenAIKey:               os.Getenv("OPENAI_API_KEY"),
		SummaryModel:            getEnv("SUMMARY_MODEL", "gpt-3.5-turbo"),
		Policy:                  policyFromEnv(),
	}
}

func policyFromEnv() Policy {
	p := DefaultPolicy()
	p.NegativeCompoundFloor = getEnvFloat("WARN_NEGATIVE_FLOOR", p.NegativeCompoundFloor)
	p.NegativeCountTrigger = getEnvInt("WARN_NEGATIVE_COUNT", p.NegativeCountTrigger)
	p.DropDelta = getEnvFloat("WARN_DROP_DELTA", p.DropDelta)
	p.HighFrequencyTrigger = getEnvInt("WARN_HIGH_FREQUENCY", p.HighFrequencyTrigger)
	return p
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
