package document

import (
	"bytes"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
)

// funcs is the template function set. sprig's environment and network
// helpers are removed so documents stay deterministic.
var funcs = func() template.FuncMap {
	m := sprig.TxtFuncMap()
	for _, name := range []string{"env", "expandenv", "getHostByName"} {
		delete(m, name)
	}
	return m
}()

// expand runs src as a text/template with the job inputs as data.
func expand(name string, src []byte, inputs map[string]any) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(funcs).Parse(string(src))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{"inputs": inputs}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
