package main

import (
	"fmt"
	"os"
	"strconv"

	"retail/cmd"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

func main() {
	configs := getConfigs()

	app, err := cmd.NewCompositionRoot(configs)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}
	defer app.Close()

	if err := app.StartJobs(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}

	startWebServer(app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:        goDotEnvVariable("HTTP_PORT", "8080"),
		StrictAdvance:   boolEnvVariable("STRICT_ADVANCE", false),
		SimEnabled:      boolEnvVariable("SIM_ENABLED", true),
		SimCustomers:    intEnvVariable("SIM_CUSTOMERS", 40),
		SimSeed:         int64(intEnvVariable("SIM_SEED", 1)),
		SimTickSeconds:  intEnvVariable("SIM_TICK_SECONDS", 1),
		OrderSimEnabled: boolEnvVariable("ORDER_SIM_ENABLED", false),
	}
	return config
}

func goDotEnvVariable(key, fallback string) string {
	_ = godotenv.Load(".env")
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intEnvVariable(key string, fallback int) int {
	raw := goDotEnvVariable(key, strconv.Itoa(fallback))
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("Invalid value for %s: %v", key, err)
	}
	return value
}

func boolEnvVariable(key string, fallback bool) bool {
	raw := goDotEnvVariable(key, strconv.FormatBool(fallback))
	value, err := strconv.ParseBool(raw)
	if err != nil {
		log.Fatalf("Invalid value for %s: %v", key, err)
	}
	return value
}

func startWebServer(app *cmd.CompositionRoot, port string) {
	e := echo.New()
	app.CreateHTTPServer().RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
