package domain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	dataURIScheme = "data:"
	svgMediaType  = "image/svg+xml"
)

type DataURI struct {
	MediaType string
	Base64    bool
	Data      []byte
}

// ParseDataURI decodes an RFC 2397 data URI.
func ParseDataURI(raw string) (DataURI, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(strings.ToLower(trimmed), dataURIScheme) {
		return DataURI{}, fmt.Errorf("%w: not a data uri", ErrDecode)
	}

	header, payload, ok := strings.Cut(trimmed[len(dataURIScheme):], ",")
	if !ok {
		return DataURI{}, fmt.Errorf("%w: data uri missing payload separator", ErrDecode)
	}

	params := strings.Split(header, ";")
	result := DataURI{MediaType: strings.ToLower(strings.TrimSpace(params[0]))}
	if result.MediaType == "" {
		result.MediaType = "text/plain"
	}
	for _, param := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(param), "base64") {
			result.Base64 = true
		}
	}

	if result.Base64 {
		decoded, err := decodeBase64(payload)
		if err != nil {
			return DataURI{}, fmt.Errorf("%w: data uri payload: %v", ErrDecode, err)
		}
		result.Data = decoded
		return result, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return DataURI{}, fmt.Errorf("%w: data uri payload: %v", ErrDecode, err)
	}
	result.Data = []byte(unescaped)

	return result, nil
}

func decodeBase64(payload string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)

	decoded, err := base64.StdEncoding.DecodeString(cleaned)
	if err == nil {
		return decoded, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(cleaned, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}

type tokenMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// DecodeTokenURI unwraps the tokenURI envelope: a JSON data URI whose image
// field is itself a data URI. Price and TxHash are left for the caller.
func DecodeTokenURI(tokenURI string) (Artifact, error) {
	envelope, err := ParseDataURI(tokenURI)
	if err != nil {
		return Artifact{}, fmt.Errorf("decode envelope: %w", err)
	}

	var meta tokenMetadata
	if err := json.Unmarshal(envelope.Data, &meta); err != nil {
		return Artifact{}, fmt.Errorf("%w: envelope metadata: %v", ErrDecode, err)
	}
	if strings.TrimSpace(meta.Image) == "" {
		return Artifact{}, fmt.Errorf("%w: envelope metadata missing image", ErrDecode)
	}

	image, err := ParseDataURI(meta.Image)
	if err != nil {
		return Artifact{}, fmt.Errorf("decode image: %w", err)
	}
	if !utf8.Valid(image.Data) && image.MediaType == svgMediaType {
		return Artifact{}, fmt.Errorf("%w: image is not valid utf-8", ErrDecode)
	}

	artifact := Artifact{
		TokenURI:    tokenURI,
		Name:        meta.Name,
		Description: meta.Description,
		MediaType:   image.MediaType,
	}

	if image.MediaType == svgMediaType {
		artifact.Image = string(image.Data)
		lines, err := svgTextLines(image.Data)
		if err != nil {
			return Artifact{}, err
		}
		artifact.Lines = lines
	} else {
		artifact.Image = base64.StdEncoding.EncodeToString(image.Data)
	}

	return artifact, nil
}

func svgTextLines(svg []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(svg))
	decoder.Strict = false

	var (
		lines   []string
		depth   int
		current strings.Builder
	)
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: image svg: %v", ErrDecode, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "text" {
				depth++
			}
		case xml.EndElement:
			if t.Name.Local == "text" && depth > 0 {
				depth--
				if depth == 0 {
					if line := strings.Join(strings.Fields(current.String()), " "); line != "" {
						lines = append(lines, line)
					}
					current.Reset()
				}
			}
		case xml.CharData:
			if depth > 0 {
				current.Write(t)
			}
		}
	}

	return lines, nil
}
