package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ClientVersion is the protocol version this client speaks. Responses
// carrying any other version are rejected and force a session restart.
const ClientVersion = "0.6.0"

const versionKeyword = ":version"

// Commands understood by the backend and the response tags each may
// legitimately answer with.
const (
	CommandPGNToFEN      = ":pgn-to-fen"
	CommandPGNToBoard    = ":pgn-to-board"
	CommandPGNToMainline = ":pgn-to-mainline"
	CommandPGNToScore    = ":pgn-to-score"

	TagFEN       = ":fen"
	TagBoardSVG  = ":board-svg"
	TagBoardText = ":board-text"
	TagSAN       = ":san"
	TagScore     = ":score"

	PayloadTypePGN = ":pgn"
)

var responseTags = map[string][]string{
	CommandPGNToFEN:      {TagFEN},
	CommandPGNToBoard:    {TagBoardSVG, TagBoardText},
	CommandPGNToMainline: {TagSAN},
	CommandPGNToScore:    {TagScore},
}

// Option is a single request option. A nil Value emits nothing, a true
// boolean emits a bare flag, anything else emits -key=value.
type Option struct {
	Key   string
	Value any
}

// Options is an ordered option list. Order is preserved on the wire.
type Options []Option

// Encode renders the options as the space-joined request segment,
// including the leading space before each emitted option.
func (opts Options) Encode() string {
	var sb strings.Builder
	for _, o := range opts {
		switch v := o.Value.(type) {
		case nil:
		case bool:
			if v {
				sb.WriteString(" -")
				sb.WriteString(o.Key)
			}
		default:
			sb.WriteString(" -")
			sb.WriteString(o.Key)
			sb.WriteString("=")
			sb.WriteString(quoteValue(fmt.Sprintf("%v", v)))
		}
	}
	return sb.String()
}

// quoteValue shell-quotes a value only when it needs it, matching how
// the backend splits the option segment.
func quoteValue(s string) string {
	if s == "" {
		return "''"
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		case b == '@' || b == '%' || b == '+' || b == '=' || b == ':' ||
			b == ',' || b == '.' || b == '/' || b == '_' || b == '-':
		default:
			return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
		}
	}
	return s
}

// EscapePayload normalizes payload line endings: embedded newlines
// become the two-character sequence \n and trailing newlines are
// dropped so the request line carries exactly one real terminator.
func EscapePayload(payload string) string {
	payload = strings.TrimRight(payload, "\n")
	return strings.ReplaceAll(payload, "\n", `\n`)
}

// EncodeRequest builds one full request line, trailing newline included.
func EncodeRequest(command string, opts Options, payloadType, payload string) string {
	return versionKeyword + " " + ClientVersion + " " + command + opts.Encode() +
		" -- " + payloadType + " " + EscapePayload(payload) + "\n"
}

// ParseResponse splits a raw response line into its tag and content.
// The leading version token must be present and equal to ClientVersion;
// the content has its single leading whitespace run stripped.
func ParseResponse(raw string) (tag, content string, err error) {
	raw = strings.TrimSuffix(raw, "\n")
	raw = strings.TrimSuffix(raw, "\r")
	if strings.TrimSpace(raw) == "" {
		return "", "", ErrEmptyResponse
	}

	rest, ok := strings.CutPrefix(raw, versionKeyword+" ")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrMissingVersion, firstToken(raw))
	}
	rest = strings.TrimLeft(rest, " \t")
	version := firstToken(rest)
	if version == "" || strings.HasPrefix(version, ":") {
		return "", "", fmt.Errorf("%w: %q", ErrMissingVersion, version)
	}
	if version != ClientVersion {
		return "", "", fmt.Errorf("%w: server %s, client %s",
			ErrVersionMismatch, version, ClientVersion)
	}

	rest = strings.TrimLeft(rest[len(version):], " \t")
	tag = firstToken(rest)
	if !strings.HasPrefix(tag, ":") {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedTag, tag)
	}

	content = rest[len(tag):]
	content = strings.TrimLeft(content, " \t")
	return tag, content, nil
}

func firstToken(s string) string {
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i]
	}
	return s
}

// isVersionError reports whether err is one of the protocol violations
// that must force a session restart.
func isVersionError(err error) bool {
	return errors.Is(err, ErrMissingVersion) || errors.Is(err, ErrVersionMismatch)
}
