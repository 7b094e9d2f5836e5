package engine

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// templateFuncs — дополнительные функции для шаблонов аргументов.
var templateFuncs = template.FuncMap{
	// default — возвращает значение по умолчанию, если строка пустая
	"default": func(def, val string) string {
		if val == "" {
			return def
		}
		return val
	},
	"lower":   strings.ToLower,
	"upper":   strings.ToUpper,
	"trim":    strings.TrimSpace,
	"replace": strings.ReplaceAll,
}

// Render рендерит строковый шаблон над env.
//
//	{{ .MODEL }}
//	{{ .MODE | lower }}
//	{{ default "/tmp" .OUT_DIR }}
//
// Отсутствующий ключ — ошибка, а не пустая строка.
func Render(tmpl string, env map[string]string) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New("").Funcs(templateFuncs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	return buf.String(), nil
}

// RenderArgs рендерит каждый аргумент команды.
func RenderArgs(args []string, env map[string]string) ([]string, error) {
	out := make([]string, len(args))
	for i, arg := range args {
		rendered, err := Render(arg, env)
		if err != nil {
			return nil, fmt.Errorf("arg %d: %w", i, err)
		}
		out[i] = rendered
	}
	return out, nil
}
