package extract

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tobi-ak/invoiceflow/internal/entity"
)

// rawStreamStrategy is the fallback reader: it sweeps the byte stream for
// content streams, inflates FlateDecode data, and collects the operands of
// text-showing operators. It loses layout but survives documents whose
// cross-reference structure the structured parser rejects.
type rawStreamStrategy struct{}

var (
	streamMarker    = []byte("stream")
	endStreamMarker = []byte("endstream")

	// (text) Tj  and  [(a) -12 (b)] TJ
	reShowText = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)\s*(?:Tj|'|")|\[((?:\\.|[^\]])*)\]\s*TJ`)
	reParen    = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)
)

func (rawStreamStrategy) Name() string { return "raw-stream" }

func (rawStreamStrategy) Extract(ctx context.Context, doc entity.Document) (string, error) {
	if !bytes.Contains(doc.Data, []byte("%PDF")) {
		return "", fmt.Errorf("no PDF header in %q", doc.Name)
	}

	var b strings.Builder
	streams := 0
	data := doc.Data
	for {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		i := bytes.Index(data, streamMarker)
		if i < 0 {
			break
		}
		rest := data[i+len(streamMarker):]
		// skip the EOL that terminates the "stream" keyword
		rest = bytes.TrimLeft(rest, "\r\n")
		j := bytes.Index(rest, endStreamMarker)
		if j < 0 {
			break
		}
		body := rest[:j]
		data = rest[j+len(endStreamMarker):]
		streams++

		if inflated, err := inflate(body); err == nil {
			body = inflated
		}
		appendShownText(&b, body)
	}

	if streams == 0 {
		return "", fmt.Errorf("no content streams found in %q", doc.Name)
	}
	return b.String(), nil
}

func inflate(body []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	// malformed tails are common; keep whatever inflated cleanly
	out, err := io.ReadAll(zr)
	if len(out) == 0 && err != nil {
		return nil, err
	}
	return out, nil
}

func appendShownText(b *strings.Builder, body []byte) {
	for _, m := range reShowText.FindAllSubmatch(body, -1) {
		switch {
		case len(m[1]) > 0:
			b.WriteString(unescapeLiteral(string(m[1])))
			b.WriteString(" ")
		case len(m[2]) > 0:
			for _, p := range reParen.FindAllSubmatch(m[2], -1) {
				b.WriteString(unescapeLiteral(string(p[1])))
			}
			b.WriteString(" ")
		}
	}
}

func unescapeLiteral(s string) string {
	r := strings.NewReplacer(
		`\(`, "(",
		`\)`, ")",
		`\\`, `\`,
		`\n`, "\n",
		`\r`, "",
		`\t`, "\t",
	)
	return r.Replace(s)
}
