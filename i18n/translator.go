package i18n

import (
	"strings"
	"sync/atomic"
)

// Translator retrieves localized messages for diagnostic codes.
// data provides optional values to embed in the message (for example,
// "expected", "actual", "key" or "field").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"root_shape":   "document root must be a mapping, got {actual}",
		"invalid_key":  "mapping key cannot be read as a string, got {actual}",
		"invalid_type": "invalid type: expected {expected}, got {actual}",
		"parse_error":  "cannot convert {actual} to {expected}",
		"overflow":     "value out of range for {expected}",
		"required":     "required field {key} is missing",
		"null_value":   "null value for non-optional {expected}; using the zero value",
		"unknown_key":  "unknown key {key}",
		"too_deep":     "nesting deeper than {limit} levels",
	},
	"ja": {
		"root_shape":   "ドキュメントのルートはマッピングである必要があります ({actual})",
		"invalid_key":  "マッピングのキーを文字列として読めません ({actual})",
		"invalid_type": "型が不正です: {expected} が必要ですが {actual} でした",
		"parse_error":  "{actual} を {expected} に変換できません",
		"overflow":     "{expected} の範囲外の値です",
		"required":     "必須フィールド {key} が不足しています",
		"null_value":   "null が指定されました。{expected} のゼロ値を使用します",
		"unknown_key":  "未知のキーです: {key}",
		"too_deep":     "ネストが {limit} 階層を超えています",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	return expand(msg, data)
}

// expand substitutes {name} placeholders; unknown placeholders are left as is.
func expand(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

type holder struct{ tr Translator }

var current atomic.Value

func init() { current.Store(holder{dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	current.Store(holder{dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). A nil Translator restores English.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(holder{tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return current.Load().(holder).tr.Message(code, data)
}
