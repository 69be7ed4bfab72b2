package sizespec

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidSize = errors.New("invalid size")

// DefaultSizes is the allow-list used when none is configured.
var DefaultSizes = []string{
	"32w", "64w", "128w", "256w", "320w", "360w", "480w", "540w", "640w",
	"720w", "768w", "960w", "1080w", "1280w", "1440w", "1920w", "2048w",
	"128h", "256h", "360h", "480h", "720h", "1080h",
	"128x128", "256x256", "360x270", "480x360", "640x480", "720x540",
	"1280x720", "1920x1080",
}

// Spec is a parsed size token. A zero dimension is unset.
type Spec struct {
	Width  int
	Height int
}

func (s Spec) Valid() bool {
	return s.Width > 0 || s.Height > 0
}

// Token renders the canonical size token for s.
func (s Spec) Token() string {
	switch {
	case s.Width > 0 && s.Height > 0:
		return strconv.Itoa(s.Width) + "x" + strconv.Itoa(s.Height)
	case s.Width > 0:
		return strconv.Itoa(s.Width) + "w"
	case s.Height > 0:
		return strconv.Itoa(s.Height) + "h"
	default:
		return ""
	}
}

type Parser struct {
	allowed map[string]struct{}
}

func NewParser(allowed []string) *Parser {
	if len(allowed) == 0 {
		allowed = DefaultSizes
	}

	p := &Parser{allowed: make(map[string]struct{}, len(allowed))}
	for _, token := range allowed {
		p.allowed[token] = struct{}{}
	}
	return p
}

func (p *Parser) Allowed(token string) bool {
	_, ok := p.allowed[token]
	return ok
}

// Parse turns an allow-listed token such as "480w", "360h" or "360x270"
// into a Spec.
func (p *Parser) Parse(token string) (Spec, error) {
	if !p.Allowed(token) {
		return Spec{}, ErrInvalidSize
	}

	switch {
	case strings.HasSuffix(token, "w"):
		width, err := parseDimension(strings.TrimSuffix(token, "w"))
		if err != nil {
			return Spec{}, err
		}
		return Spec{Width: width}, nil
	case strings.HasSuffix(token, "h"):
		height, err := parseDimension(strings.TrimSuffix(token, "h"))
		if err != nil {
			return Spec{}, err
		}
		return Spec{Height: height}, nil
	}

	parts := strings.Split(token, "x")
	if len(parts) != 2 {
		return Spec{}, ErrInvalidSize
	}

	width, err := parseDimension(parts[0])
	if err != nil {
		return Spec{}, err
	}
	height, err := parseDimension(parts[1])
	if err != nil {
		return Spec{}, err
	}

	return Spec{Width: width, Height: height}, nil
}

func parseDimension(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, ErrInvalidSize
	}
	return n, nil
}
