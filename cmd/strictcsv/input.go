package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const encodingAuto = "auto"

// lookupEncoding maps an --encoding value to a decoder factory. "auto" honours a
// UTF-8 or UTF-16 byte order mark and otherwise assumes UTF-8.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", encodingAuto:
		return nil, nil
	case "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
}

// decodeInput turns raw bytes into the text handed to the parser. A leading byte
// order mark is consumed and never becomes part of the first field.
func decodeInput(data []byte, encName string) (string, error) {
	enc, err := lookupEncoding(encName)
	if err != nil {
		return "", err
	}
	if enc == nil {
		enc = unicode.UTF8
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("decoding input: %w", err)
	}
	return string(out), nil
}

// readInput reads the named file, or stdin when name is empty or "-".
func readInput(stdin io.Reader, name, encName string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "" || name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return decodeInput(data, encName)
}

func inputName(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

// openOutput returns the destination for --output, defaulting to stdout. The
// finish func takes the result of the write, closes the file and removes it if
// anything failed, so a failed run leaves no partial output behind.
func openOutput(stdout io.Writer, path string) (io.Writer, func(error) error, error) {
	if path == "" || path == "-" {
		return stdout, func(err error) error { return err }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output: %w", err)
	}
	finish := func(err error) error {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing output: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
		return err
	}
	return f, finish, nil
}
