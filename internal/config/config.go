package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	LogDirectory string

	// Camera
	CameraDevice    int
	CameraWidth     int
	CameraHeight    int
	CameraFPS       int
	ApplyCorrection bool
	CalibrationPath string

	// Detectors
	InitialMode      string
	MarkerSize       float64 // fiducial marker edge length in meters
	ModelPath        string
	ModelConfigPath  string
	DetectConfidence float64
	ColorTargets     string // comma-separated name=hex pairs for the color detector
	BlockColor       string // single hex color for the block detector
	BlockMinArea     float64
	BlockMinFill     float64

	// Navigation
	TargetMarkerID int // preferred marker identity; -1 means closest wins
	Standoff       float64
	LateralTol     float64
	DepthTol       float64
	GainX          float64
	GainZ          float64
	MaxSpeed       float64 // mm/s
	MinSpeed       float64 // mm/s
	LossTimeout    time.Duration
	ControlPeriod  time.Duration
	MarkerTable    string // comma-separated id:name waypoint pairs

	// Manual drive
	DriveSpeed float64 // mm/s
	TurnSpeed  float64 // rotation rate sent to the bridge

	// Chassis bridge
	ChassisURL string

	// Event storage
	DatabasePath      string
	SnapshotDirectory string
	SnapshotLimit     int
	SnapshotInterval  int // flush interval in seconds
}

func Load() *Config {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	return &Config{
		Port:         getEnvAsInt("PORT", 8080),
		LogDirectory: getEnv("LOG_DIR", filepath.Join(".", "logs")),

		CameraDevice:    getEnvAsInt("CAMERA_DEVICE", 0),
		CameraWidth:     getEnvAsInt("CAMERA_WIDTH", 640),
		CameraHeight:    getEnvAsInt("CAMERA_HEIGHT", 480),
		CameraFPS:       getEnvAsInt("CAMERA_FPS", 30),
		ApplyCorrection: getEnvAsBool("CAMERA_CORRECTION", true),
		CalibrationPath: getEnv("CALIBRATION_PATH", filepath.Join(".", "calibration.json")),

		InitialMode:      getEnv("INITIAL_MODE", "fiducial"),
		MarkerSize:       getEnvAsFloat("MARKER_SIZE_M", 0.045),
		ModelPath:        getEnv("MODEL_PATH", filepath.Join(".", "models", "MobileNetSSD_deploy.caffemodel")),
		ModelConfigPath:  getEnv("MODEL_CONFIG_PATH", filepath.Join(".", "models", "MobileNetSSD_deploy.prototxt")),
		DetectConfidence: getEnvAsFloat("DETECT_CONFIDENCE", 0.5),
		ColorTargets:     getEnv("COLOR_TARGETS", "red=#c81e1e,green=#1ec81e,blue=#1e50c8"),
		BlockColor:       getEnv("BLOCK_COLOR", "#1e50c8"),
		BlockMinArea:     getEnvAsFloat("BLOCK_MIN_AREA", 1200),
		BlockMinFill:     getEnvAsFloat("BLOCK_MIN_FILL", 0.6),

		TargetMarkerID: getEnvAsInt("TARGET_MARKER_ID", -1),
		Standoff:       getEnvAsFloat("STANDOFF_M", 0.4572),
		LateralTol:     getEnvAsFloat("LATERAL_TOLERANCE_M", 0.02),
		DepthTol:       getEnvAsFloat("DEPTH_TOLERANCE_M", 0.05),
		GainX:          getEnvAsFloat("GAIN_X", 600),
		GainZ:          getEnvAsFloat("GAIN_Z", 800),
		MaxSpeed:       getEnvAsFloat("MAX_SPEED_MM_S", 350),
		MinSpeed:       getEnvAsFloat("MIN_SPEED_MM_S", 80),
		LossTimeout:    getEnvAsDuration("LOSS_TIMEOUT", time.Second),
		ControlPeriod:  getEnvAsDuration("CONTROL_PERIOD", 50*time.Millisecond),
		MarkerTable:    getEnv("MARKER_TABLE", "0:TURN_LEFT,1:TURN_RIGHT,2:STRAFE_LEFT,3:STRAFE_RIGHT,4:FINISH"),

		DriveSpeed: getEnvAsFloat("DRIVE_SPEED_MM_S", 40),
		TurnSpeed:  getEnvAsFloat("TURN_SPEED", 35),

		ChassisURL: getEnv("CHASSIS_URL", "http://127.0.0.1:9090"),

		DatabasePath:      getEnv("DATABASE_PATH", filepath.Join(".", "events.db")),
		SnapshotDirectory: getEnv("SNAPSHOT_DIR", filepath.Join(".", "snapshots")),
		SnapshotLimit:     getEnvAsInt("SNAPSHOT_LIMIT", 7),
		SnapshotInterval:  getEnvAsInt("SNAPSHOT_INTERVAL", 30),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
