package server

import (
	"github.com/raysh454/hfdl/internal/app"
	"github.com/raysh454/hfdl/internal/script"
)

// LinksResponse lists the download links found for a repository.
type LinksResponse struct {
	HFPath   string   `json:"hf_path" example:"openai-community/gpt2"`
	Domain   string   `json:"domain" example:"hf-mirror.com"`
	Revision string   `json:"revision" example:"main"`
	Links    []string `json:"links" example:"https://hf-mirror.com/openai-community/gpt2/resolve/main/config.json"`
}

// HealthResponse is returned by the health probe.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// ScriptsResponse lists the scripts held in temporary storage.
type ScriptsResponse struct {
	Scripts []script.File `json:"scripts"`
}

// JobsResponse lists known jobs.
type JobsResponse struct {
	Jobs []app.Job `json:"jobs"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"Failed to fetch the URL, pls try again later"`
}
