package server

//go:generate swag init -g internal/server/server.go -o docs/swagger

// @title hfdl API
// @version 0.1
// @description Generates bash scripts that download every file of a Hugging Face repository from a mirror.
// @contact.name hfdl Maintainers
// @contact.url https://github.com/raysh454/hfdl
// @BasePath /
