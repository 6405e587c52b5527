package network

import (
	"maskedvaccine/internal/domain/fhe"
)

type Input struct{}

type Output struct {
	Body fhe.Metadata
}
