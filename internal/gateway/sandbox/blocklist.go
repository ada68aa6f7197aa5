package sandbox

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
)

// blocklistFPR is the false positive rate of the blocklist filter. A false
// positive declines a token that is not on the list, which is acceptable in
// the sandbox.
const blocklistFPR = 0.0001

// Blocklist is a set of payment tokens that are always declined.
type Blocklist struct {
	filter *bloom.BloomFilter
	size   int
}

// NewBlocklist builds a Blocklist from tokens. Blank entries are skipped.
func NewBlocklist(tokens []string) *Blocklist {
	clean := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok = strings.TrimSpace(tok); tok != "" {
			clean = append(clean, tok)
		}
	}

	filter := bloom.NewWithEstimates(uint(max(len(clean), 1)), blocklistFPR)
	for _, tok := range clean {
		filter.AddString(tok)
	}
	return &Blocklist{filter: filter, size: len(clean)}
}

// LoadBlocklist builds a Blocklist from the tokens in path plus extra.
// See ReadTokens for the file format.
func LoadBlocklist(path string, extra ...string) (*Blocklist, error) {
	tokens, err := ReadTokens(path)
	if err != nil {
		return nil, err
	}
	return NewBlocklist(append(tokens, extra...)), nil
}

// ReadTokens reads one token per line from path. Files ending in ".gz" are
// decompressed. Blank lines and lines starting with '#' are skipped.
func ReadTokens(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open blocklist")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if filepath.Ext(path) == ".gz" {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "create gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	var tokens []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens = append(tokens, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read blocklist %s", path)
	}
	return tokens, nil
}

// Contains reports whether token is (probably) blocked.
func (b *Blocklist) Contains(token string) bool {
	if b == nil || b.size == 0 {
		return false
	}
	return b.filter.TestString(token)
}

// Len returns the number of tokens added to the list.
func (b *Blocklist) Len() int {
	if b == nil {
		return 0
	}
	return b.size
}
