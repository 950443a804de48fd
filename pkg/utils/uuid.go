package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateID gera um id alfanumérico curto, usado como run id do pipeline
func GenerateID(size int) (string, error) {
	if size <= 0 {
		size = 6
	}
	return gonanoid.Generate(characters, size)
}
