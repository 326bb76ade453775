package bruno

import (
	"strings"

	"github.com/tidwall/gjson"
)

// FromPostmanEnvironment converts a Postman environment (or the exported
// global variables document, which has the same shape) into a Bruno
// environment. Variables of type "secret" are marked secret.
func FromPostmanEnvironment(doc []byte) (*Environment, error) {
	doc = unwrapEnvelope(doc, "environment", "values")
	if err := ValidateEnvironment(doc); err != nil {
		return nil, err
	}

	pm := gjson.ParseBytes(doc)
	name := strings.TrimSpace(pm.Get("name").String())
	if name == "" {
		name = "Untitled Environment"
	}
	g := newUIDGen("environment:" + name + ":" + pm.Get("id").String())

	env := &Environment{
		UID:       g.next(),
		Name:      name,
		Variables: []Variable{},
	}
	pm.Get("values").ForEach(func(_, v gjson.Result) bool {
		enabled := true
		if e := v.Get("enabled"); e.Exists() {
			enabled = e.Bool()
		}
		env.Variables = append(env.Variables, Variable{
			UID:     g.next(),
			Name:    v.Get("key").String(),
			Value:   v.Get("value").String(),
			Type:    "text",
			Enabled: enabled,
			Secret:  v.Get("type").String() == "secret",
		})
		return true
	})
	return env, nil
}
