package templatepro

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// The compiled-template file is a flat concatenation of tokens with no
// header or checksum: 1 byte kind, two length-prefixed UTF-8 strings,
// then Ref1 and Ref2 as 8-byte little-endian integers. Reading stops at
// the first EOF token.

// SaveToFile persists the compiled token vector.
func (t *Template) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating dump file")
	}
	w := bufio.NewWriter(f)
	for _, tok := range t.toks {
		if err := writeToken(w, tok); err != nil {
			f.Close()
			return err
		}
		if tok.Kind == KindEOF {
			break
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrap(err, "writing dump file")
	}
	return f.Close()
}

// CreateFromFile loads a vector saved by SaveToFile. The loaded template
// starts with an empty environment and the default filters and format
// settings.
func CreateFromFile(path string) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening dump file")
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var toks []Token
	for {
		tok, err := readToken(r)
		if err != nil {
			return nil, errors.Wrapf(err, "corrupt dump %q", path)
		}
		toks = append(toks, tok)
		if tok.Kind == KindEOF {
			break
		}
	}
	return newCompiledTemplate(toks), nil
}

func writeToken(w io.Writer, tok Token) error {
	if err := binary.Write(w, binary.LittleEndian, byte(tok.Kind)); err != nil {
		return errors.Wrap(err, "writing token")
	}
	if err := writeString(w, tok.Value1); err != nil {
		return err
	}
	if err := writeString(w, tok.Value2); err != nil {
		return err
	}
	refs := [2]int64{int64(tok.Ref1), int64(tok.Ref2)}
	if err := binary.Write(w, binary.LittleEndian, refs); err != nil {
		return errors.Wrap(err, "writing token refs")
	}
	return nil
}

func readToken(r io.Reader) (Token, error) {
	var kind byte
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return Token{}, err
	}
	if int(kind) >= len(kindNames) {
		return Token{}, fmt.Errorf("bad token kind %d", kind)
	}
	v1, err := readString(r)
	if err != nil {
		return Token{}, err
	}
	v2, err := readString(r)
	if err != nil {
		return Token{}, err
	}
	var refs [2]int64
	if err := binary.Read(r, binary.LittleEndian, &refs); err != nil {
		return Token{}, err
	}
	return Token{
		Kind:   Kind(kind),
		Value1: v1,
		Value2: v2,
		Ref1:   int(refs[0]),
		Ref2:   int(refs[1]),
	}, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return errors.Wrap(err, "writing string length")
	}
	if _, err := io.WriteString(w, s); err != nil {
		return errors.Wrap(err, "writing string payload")
	}
	return nil
}

const maxDumpString = 64 << 20

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n > maxDumpString {
		return "", fmt.Errorf("string length %d out of range", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// DumpToFile writes a human-readable token listing.
func (t *Template) DumpToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating dump file")
	}
	if err := t.Dump(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Dump writes the listing to any writer; the CLI points it at stdout.
func (t *Template) Dump(w io.Writer) error {
	for i, tok := range t.toks {
		_, err := fmt.Fprintf(w, "%4d %-16s %-24q %-12q %4d %4d\n",
			i, tok.Kind, tok.Value1, tok.Value2, tok.Ref1, tok.Ref2)
		if err != nil {
			return errors.Wrap(err, "writing dump")
		}
	}
	return nil
}
