package nclink

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Field widths of the unwrapped command.
const (
	NameWidth = 7
	ArgsWidth = 8
)

// Wire markers.
const (
	FrameMarker   = '%'
	CommandMarker = 'C'
	crlf          = "\r\n"
	commandTail   = "  " + crlf
	// frameTrailerSize is len(crlf) + 2 checksum digits + len("%\r\n").
	frameTrailerSize = 7
)

// LoadCommandName is the command that asks the control to return a stored file.
const LoadCommandName = "LOD"

// Command is a single request: a short command name and its argument string.
type Command struct {
	Name string
	Args string
}

// NewCommand creates a Command. Name and args are not length checked.
func NewCommand(name, args string) Command {
	return Command{Name: name, Args: args}
}

// LoadCommand returns the "LOD" command for the given stored file name.
func LoadCommand(file string) Command {
	return Command{Name: LoadCommandName, Args: file}
}

// Body returns the unwrapped command text the checksum is computed over.
func (c Command) Body() string {
	var sb strings.Builder
	sb.Grow(1 + max(len(c.Name), NameWidth) + max(len(c.Args), ArgsWidth) + len(commandTail))
	sb.WriteByte(CommandMarker)
	sb.WriteString(padRight(c.Name, NameWidth))
	sb.WriteString(padRight(c.Args, ArgsWidth))
	sb.WriteString(commandTail)

	return sb.String()
}

// Frame returns the complete wire frame as text.
func (c Command) Frame() string {
	body := c.Body()

	return fmt.Sprintf("%c%s%s%02d%c%s", FrameMarker, body, crlf, Checksum(body), FrameMarker, crlf)
}

// Pack returns the wire frame encoded as single-byte ASCII.
// Characters outside the ASCII range are replaced by '?'.
func (c Command) Pack() []byte {
	return asciiBytes(c.Frame())
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name) + " " + strings.TrimSpace(c.Args)
}

// Checksum returns the sum of the character codes of s modulo 16.
func Checksum(s string) int {
	sum := 0
	for _, r := range s {
		sum += int(r)
	}

	return sum % 16
}

// ParseFrame decodes a frame produced by Pack back into its Command.
//
// The checksum digits are verified against the command text. Name and args are
// returned with their padding removed. ParseFrame assumes the name fits in
// NameWidth; an overlength name cannot be separated from its args and ends up
// split at the field boundary.
func ParseFrame(frame []byte) (Command, error) {
	s := string(frame)

	if len(s) < 1+1+NameWidth+ArgsWidth+len(commandTail)+frameTrailerSize {
		return Command{}, fmt.Errorf("%w: frame too short (%d bytes)", ErrMalformedFrame, len(s))
	}
	if s[0] != FrameMarker {
		return Command{}, fmt.Errorf("%w: missing leading %q", ErrMalformedFrame, FrameMarker)
	}

	trailer := s[len(s)-frameTrailerSize:]
	if trailer[:2] != crlf || trailer[4] != FrameMarker || trailer[5:] != crlf {
		return Command{}, fmt.Errorf("%w: bad trailer %q", ErrMalformedFrame, trailer)
	}

	wireSum, err := strconv.Atoi(trailer[2:4])
	if err != nil {
		return Command{}, fmt.Errorf("%w: checksum digits %q", ErrMalformedFrame, trailer[2:4])
	}

	body := s[1 : len(s)-frameTrailerSize]
	if body[0] != CommandMarker || !strings.HasSuffix(body, commandTail) {
		return Command{}, fmt.Errorf("%w: bad command body %q", ErrMalformedFrame, body)
	}

	if calc := Checksum(body); calc != wireSum {
		return Command{}, fmt.Errorf("%w: wire=%02d, computed=%02d", ErrChecksumMismatch, wireSum, calc)
	}

	fields := body[1 : len(body)-len(commandTail)]

	return Command{
		Name: strings.TrimRight(fields[:NameWidth], " "),
		Args: strings.TrimRight(fields[NameWidth:], " "),
	}, nil
}

func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}

	return s + strings.Repeat(" ", width-n)
}

func asciiBytes(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0x7F {
			r = '?'
		}
		out = append(out, byte(r))
	}

	return out
}

func asciiString(b []byte) string {
	for _, c := range b {
		if c > 0x7F {
			return string(asciiReplace(b))
		}
	}

	return string(b)
}

func asciiReplace(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c > 0x7F {
			c = '?'
		}
		out[i] = c
	}

	return out
}
