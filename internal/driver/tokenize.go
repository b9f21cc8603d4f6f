package driver

import (
	"ownsim/internal/diag"
	"ownsim/internal/lexer"
	"ownsim/internal/source"
	"ownsim/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize lexes a text script. YAML scripts have no token stream.
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return TokenizeFile(fs, fileID, maxDiagnostics), nil
}

// TokenizeFile lexes an already loaded file.
func TokenizeFile(fs *source.FileSet, fileID source.FileID, maxDiagnostics int) *TokenizeResult {
	file := fs.Get(fileID)
	bag := diag.NewBag(maxDiagnostics)
	lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  lx.All(),
		Bag:     bag,
	}
}
