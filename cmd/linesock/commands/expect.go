package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/linesock/linesock-go/pkg/socket"
)

// ParseExpect parses a read expectation:
//
//	idle         read until the server goes quiet
//	N            read N lines
//	/regexp/     read until a line matches regexp
func ParseExpect(s string) (socket.Expect, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == "idle":
		return socket.Idle, nil
	case len(s) >= 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/"):
		re, err := regexp.Compile(s[1 : len(s)-1])
		if err != nil {
			return socket.Expect{}, fmt.Errorf("invalid pattern %s: %w", s, err)
		}
		return socket.Until(re), nil
	default:
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return socket.Expect{}, fmt.Errorf("invalid expectation %q (use idle, a line count or /regexp/)", s)
		}
		return socket.Lines(n), nil
	}
}

// Unescape turns \r, \n, \t and \\ in s into control characters.
func Unescape(s string) string {
	r := strings.NewReplacer(`\\`, `\`, `\r`, "\r", `\n`, "\n", `\t`, "\t")
	return r.Replace(s)
}

// withCRLF appends CRLF unless s already ends in a newline.
func withCRLF(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\r\n"
}
