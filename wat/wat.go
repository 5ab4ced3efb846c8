package wat

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/wat-syntax/wat/ast"
	"github.com/wippyai/wat-syntax/wat/internal/parser"
	"github.com/wippyai/wat-syntax/wat/internal/token"
)

// DefaultMaxDepth is the nesting limit used when Config.MaxDepth is zero.
const DefaultMaxDepth = parser.DefaultMaxDepth

// Config controls a parse. A nil *Config means defaults.
type Config struct {
	// Logger overrides the package logger for this parse.
	Logger *zap.Logger

	// MaxDepth bounds nesting of folded instructions and blocks.
	MaxDepth int

	// Recover keeps parsing after a failed module field. The field is
	// replaced by an *ast.BadField, and every error is listed on
	// Document.Errors and combined into the returned error.
	Recover bool

	// SkipTrivia leaves comments and annotations off the Document.
	SkipTrivia bool
}

// Parse parses a module or a bare sequence of module fields.
func Parse(src string) (*ast.Document, error) {
	return parse(src, nil, parser.ModeAuto)
}

// ParseWithConfig is Parse with explicit configuration. In recovery mode the
// returned Document is non-nil even when err is not.
func ParseWithConfig(src string, cfg *Config) (*ast.Document, error) {
	return parse(src, cfg, parser.ModeAuto)
}

// ParseModule parses src, which must be a single (module ...) form.
func ParseModule(src string) (*ast.Module, error) {
	doc, err := parse(src, nil, parser.ModeModule)
	if err != nil {
		return nil, err
	}
	return doc.Module, nil
}

// ParseFragment parses src as a bare sequence of module fields.
func ParseFragment(src string) ([]ast.Field, error) {
	doc, err := parse(src, nil, parser.ModeFragment)
	if err != nil {
		return nil, err
	}
	return doc.Fields, nil
}

func parse(src string, cfg *Config, mode parser.Mode) (*ast.Document, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	log := cfg.Logger
	if log == nil {
		log = Logger()
	}
	log.Debug("parsing", zap.Int("bytes", len(src)), zap.Bool("recover", cfg.Recover))

	tokens, lexErr := token.Tokenize(src)
	if lexErr != nil && !cfg.Recover {
		return nil, multierr.Errors(lexErr)[0]
	}

	p := parser.New(tokens, len(src), parser.Options{
		Logger:   log,
		MaxDepth: cfg.MaxDepth,
		Mode:     mode,
		Recover:  cfg.Recover,
		Trivia:   !cfg.SkipTrivia,
	})
	doc, err := p.Parse()
	if lexErr != nil {
		lexErrs := multierr.Errors(lexErr)
		for _, e := range lexErrs {
			log.Warn("lex error", zap.Error(e))
		}
		if doc != nil {
			doc.Errors = append(lexErrs, doc.Errors...)
		}
		err = multierr.Combine(lexErr, err)
	}
	if err != nil {
		log.Debug("parse failed", zap.Error(err))
	}
	return doc, err
}
