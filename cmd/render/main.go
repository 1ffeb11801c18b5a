// Command render runs the docweave HTTP render service.
package main

import (
	"net/http"

	"docweave/api"
	"docweave/common"
	"docweave/config"
)

func main() {
	config.LoadDotEnv(".env")

	cfg, err := config.Load(common.GetEnv("DOCWEAVE_CONFIG_FILE", "./docweave.toml"))
	if err != nil {
		common.Fatal("loading configuration: %v", err)
	}

	host := common.GetEnv("DOCWEAVE_HOST", "localhost")
	port := common.GetEnv("DOCWEAVE_PORT", "8080")
	addr := host + ":" + port

	router := api.NewRouter(240)
	common.Info("docweave render service listening on %s (strict=%v, default_locale=%s)", addr, cfg.Strict, cfg.DefaultLocale)
	if err := http.ListenAndServe(addr, router); err != nil {
		common.Fatal("render service exited: %v", err)
	}
}
