package parser

import "github.com/kiliankoe/encore/internal/game"

type Parser interface {
	Parse(file string) (*game.Song, error)
}
