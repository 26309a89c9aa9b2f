package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// fieldSet is the flattened content of one log line.
type fieldSet map[string]any

func (fs fieldSet) str(key string) string {
	switch v := fs[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func (fs fieldSet) setDefault(key string, val any) {
	if fs.str(key) == "" {
		fs[key] = val
	}
}

// compactRID shortens rid for display; JSON lines keep the original as rid_full.
func (fs fieldSet) compactRID(keepFull bool) {
	rid := fs.str("rid")
	compact := CompactRID(rid)
	if rid == "" || compact == "" || compact == rid {
		return
	}
	if keepFull {
		fs.setDefault("rid_full", rid)
	}
	fs["rid"] = compact
}

// normalizeEnums canonicalizes level and status; unknown outcomes are dropped.
func (fs fieldSet) normalizeEnums() {
	if _, ok := fs["level"]; ok {
		fs["level"] = normalizeLevel(fs.str("level"))
	}
	if s := fs.str("status"); s != "" {
		fs["status"], _ = normalizeStatus(s)
	}
	if o := fs.str("outcome"); o != "" {
		if norm, ok := normalizeOutcome(o); ok {
			fs["outcome"] = norm
		} else {
			delete(fs, "outcome")
		}
	}
}

func (fs fieldSet) prune() {
	for k, v := range fs {
		if v == nil {
			delete(fs, k)
			continue
		}
		switch v.(type) {
		case string, fmt.Stringer:
			if fs.str(k) == "" {
				delete(fs, k)
			}
		}
	}
}

// keys lists the preferred keys first, then the rest alphabetically.
func (fs fieldSet) keys(preferred []string) []string {
	out := make([]string, 0, len(fs))
	used := make(map[string]bool, len(preferred))
	for _, k := range preferred {
		if _, ok := fs[k]; ok && !used[k] {
			out = append(out, k)
			used[k] = true
		}
	}
	head := len(out)
	for k := range fs {
		if !used[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out[head:])
	return out
}

type encoder func(fs fieldSet, order []string) ([]byte, error)

func encoderFor(f logFormat) encoder {
	if f == formatJSON {
		return encodeJSON
	}
	return encodeKV
}

func encodeJSON(fs fieldSet, order []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range fs.keys(order) {
		data, err := json.Marshal(fs[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(k))
		buf.WriteByte(':')
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeKV(fs fieldSet, order []string) ([]byte, error) {
	var buf bytes.Buffer
	for i, k := range fs.keys(order) {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(kvValue(fs[k]))
	}
	return buf.Bytes(), nil
}

func kvValue(v any) string {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	if strings.IndexFunc(s, needsQuote) >= 0 {
		return strconv.Quote(s)
	}
	return s
}

func needsQuote(r rune) bool {
	return r <= ' ' || r == '=' || r == '"'
}
