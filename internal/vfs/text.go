package vfs

import "bytes"

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// StripBOM removes a UTF-8 byte order mark and reports whether one was present.
func StripBOM(content []byte) ([]byte, bool) {
	if bytes.HasPrefix(content, bomUTF8) {
		return content[len(bomUTF8):], true
	}
	return content, false
}

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(content []byte) []byte {
	if bytes.IndexByte(content, '\r') < 0 {
		return content
	}
	out := make([]byte, 0, len(content))
	for i := 0; i < len(content); i++ {
		if content[i] != '\r' {
			out = append(out, content[i])
			continue
		}
		if i+1 < len(content) && content[i+1] == '\n' {
			i++
		}
		out = append(out, '\n')
	}
	return out
}

// SplitLines splits newline-delimited content into lines. A final newline
// does not start an extra line; empty content has no lines.
func SplitLines(content []byte) [][]byte {
	if len(content) == 0 {
		return nil
	}
	content = bytes.TrimSuffix(content, []byte{'\n'})
	return bytes.Split(content, []byte{'\n'})
}

// JoinLines writes each line followed by a newline.
func JoinLines(lines [][]byte) []byte {
	n := 0
	for _, l := range lines {
		n += len(l) + 1
	}
	out := make([]byte, 0, n)
	for _, l := range lines {
		out = append(out, l...)
		out = append(out, '\n')
	}
	return out
}
