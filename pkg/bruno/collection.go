package bruno

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// DefaultIgnore is written to brunoConfig.ignore of every collection.
var DefaultIgnore = []string{"node_modules", ".git"}

// uidGen derives stable identifiers from a seed so that converting the same
// document twice yields identical output.
type uidGen struct {
	seed string
	n    int
}

func newUIDGen(seed string) *uidGen { return &uidGen{seed: seed} }

func (g *uidGen) next() string {
	g.n++
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("bruno:%s#%d", g.seed, g.n))).String()
}

// FromPostmanCollection converts a Postman v2.x collection document into a
// Bruno collection. The {"collection": ...} API envelope is accepted too.
func FromPostmanCollection(doc []byte) (*Collection, error) {
	doc = unwrapEnvelope(doc, "collection", "info")
	if err := ValidateCollection(doc); err != nil {
		return nil, err
	}

	pm := gjson.ParseBytes(doc)
	name := strings.TrimSpace(pm.Get("info.name").String())
	if name == "" {
		name = "Untitled Collection"
	}
	g := newUIDGen("collection:" + name + ":" + pm.Get("info._postman_id").String())

	c := &Collection{
		Version:      "1",
		UID:          g.next(),
		Name:         name,
		Items:        g.convertItems(pm.Get("item")),
		Environments: []Environment{},
		BrunoConfig: BrunoConfig{
			Version: "1",
			Name:    name,
			Type:    "collection",
			Ignore:  append([]string(nil), DefaultIgnore...),
		},
	}
	c.Root = g.convertRoot(pm, "")
	return c, nil
}

func (g *uidGen) convertItems(items gjson.Result) []Item {
	out := []Item{}
	seq := 0
	items.ForEach(func(_, it gjson.Result) bool {
		seq++
		out = append(out, g.convertItem(it, seq))
		return true
	})
	return out
}

func (g *uidGen) convertItem(it gjson.Result, seq int) Item {
	name := it.Get("name").String()
	if name == "" {
		name = "Untitled"
	}

	// Anything carrying an item array is a folder, even when empty.
	if it.Get("item").IsArray() {
		return Item{
			UID:   g.next(),
			Type:  TypeFolder,
			Name:  name,
			Seq:   seq,
			Items: g.convertItems(it.Get("item")),
			Root:  g.convertRoot(it, name),
		}
	}

	req := g.convertRequest(it)
	itemType := TypeHTTPRequest
	if req.Body.Mode == BodyGraphQL {
		itemType = TypeGraphQLRequest
	}
	return Item{
		UID:     g.next(),
		Type:    itemType,
		Name:    name,
		Seq:     seq,
		Request: req,
	}
}

// convertRoot maps collection or folder level auth, variables and scripts.
// It returns nil when there is nothing to carry over.
func (g *uidGen) convertRoot(node gjson.Result, folderName string) *Root {
	rr := &RootRequest{}
	var used bool

	if auth := node.Get("auth"); auth.Exists() {
		a := convertAuth(auth)
		rr.Auth = &a
		used = true
	}
	if vars := g.convertVariables(node.Get("variable")); len(vars) > 0 {
		rr.Vars.Req = vars
		used = true
	}
	if s := eventScript(node.Get("event"), "prerequest"); s != "" {
		rr.Script.Req = s
		used = true
	}
	if s := eventScript(node.Get("event"), "test"); s != "" {
		rr.Tests = s
		used = true
	}

	docs := description(node.Get("info.description"))
	if folderName != "" {
		docs = description(node.Get("description"))
	}

	if !used && docs == "" {
		return nil
	}
	root := &Root{Docs: docs}
	if used {
		root.Request = rr
	}
	if folderName != "" {
		root.Meta = &Meta{Name: folderName}
	}
	return root
}

func (g *uidGen) convertRequest(it gjson.Result) *Request {
	pmReq := it.Get("request")

	req := &Request{
		Method:     "GET",
		Headers:    []KeyValue{},
		Params:     []Param{},
		Body:       Body{Mode: BodyNone, FormURLEncoded: []KeyValue{}, MultipartForm: []MultipartField{}},
		Auth:       Auth{Mode: AuthInherit},
		Assertions: []KeyValue{},
	}

	// A request may be given as a bare URL string.
	if pmReq.Type == gjson.String {
		req.URL = pmReq.String()
		return req
	}

	if m := strings.ToUpper(pmReq.Get("method").String()); m != "" {
		req.Method = m
	}
	req.URL, req.Params = g.convertURL(pmReq.Get("url"))
	req.Docs = description(pmReq.Get("description"))

	pmReq.Get("header").ForEach(func(_, h gjson.Result) bool {
		req.Headers = append(req.Headers, KeyValue{
			UID:         g.next(),
			Name:        h.Get("key").String(),
			Value:       h.Get("value").String(),
			Description: description(h.Get("description")),
			Enabled:     !h.Get("disabled").Bool(),
		})
		return true
	})

	req.Body = g.convertBody(pmReq.Get("body"))

	if auth := pmReq.Get("auth"); auth.Exists() {
		req.Auth = convertAuth(auth)
	}

	req.Script.Req = eventScript(it.Get("event"), "prerequest")
	req.Tests = eventScript(it.Get("event"), "test")
	return req
}

func (g *uidGen) convertURL(u gjson.Result) (string, []Param) {
	params := []Param{}
	if !u.Exists() {
		return "", params
	}
	if u.Type == gjson.String {
		return u.String(), params
	}

	raw := u.Get("raw").String()
	if raw == "" {
		raw = buildURL(u)
	}

	u.Get("query").ForEach(func(_, q gjson.Result) bool {
		params = append(params, Param{
			UID:         g.next(),
			Name:        q.Get("key").String(),
			Value:       q.Get("value").String(),
			Description: description(q.Get("description")),
			Type:        "query",
			Enabled:     !q.Get("disabled").Bool(),
		})
		return true
	})
	u.Get("variable").ForEach(func(_, v gjson.Result) bool {
		params = append(params, Param{
			UID:         g.next(),
			Name:        v.Get("key").String(),
			Value:       v.Get("value").String(),
			Description: description(v.Get("description")),
			Type:        "path",
			Enabled:     true,
		})
		return true
	})
	return raw, params
}

func buildURL(u gjson.Result) string {
	var b strings.Builder
	if p := u.Get("protocol").String(); p != "" {
		b.WriteString(p + "://")
	}
	b.WriteString(joinParts(u.Get("host"), "."))
	if port := u.Get("port").String(); port != "" {
		b.WriteString(":" + port)
	}
	if path := joinParts(u.Get("path"), "/"); path != "" {
		b.WriteString("/" + path)
	}
	return b.String()
}

// joinParts accepts either a string or an array of strings.
func joinParts(r gjson.Result, sep string) string {
	if !r.IsArray() {
		return r.String()
	}
	var parts []string
	for _, p := range r.Array() {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, sep)
}

func (g *uidGen) convertBody(b gjson.Result) Body {
	body := Body{Mode: BodyNone, FormURLEncoded: []KeyValue{}, MultipartForm: []MultipartField{}}
	if !b.Exists() || b.Get("disabled").Bool() {
		return body
	}

	switch b.Get("mode").String() {
	case "raw":
		raw := b.Get("raw").String()
		switch strings.ToLower(b.Get("options.raw.language").String()) {
		case "json":
			body.Mode, body.JSON = BodyJSON, raw
		case "xml":
			body.Mode, body.XML = BodyXML, raw
		case "":
			if trimmed := strings.TrimSpace(raw); trimmed != "" && gjson.Valid(trimmed) && (trimmed[0] == '{' || trimmed[0] == '[') {
				body.Mode, body.JSON = BodyJSON, raw
			} else {
				body.Mode, body.Text = BodyText, raw
			}
		default:
			body.Mode, body.Text = BodyText, raw
		}
	case "urlencoded":
		body.Mode = BodyFormURLEncoded
		b.Get("urlencoded").ForEach(func(_, f gjson.Result) bool {
			body.FormURLEncoded = append(body.FormURLEncoded, KeyValue{
				UID:         g.next(),
				Name:        f.Get("key").String(),
				Value:       f.Get("value").String(),
				Description: description(f.Get("description")),
				Enabled:     !f.Get("disabled").Bool(),
			})
			return true
		})
	case "formdata":
		body.Mode = BodyMultipartForm
		b.Get("formdata").ForEach(func(_, f gjson.Result) bool {
			field := MultipartField{
				UID:         g.next(),
				Type:        "text",
				Name:        f.Get("key").String(),
				Value:       f.Get("value").String(),
				Description: description(f.Get("description")),
				Enabled:     !f.Get("disabled").Bool(),
			}
			if f.Get("type").String() == "file" {
				field.Type = "file"
				field.Value = joinParts(f.Get("src"), "|")
			}
			body.MultipartForm = append(body.MultipartForm, field)
			return true
		})
	case "graphql":
		body.Mode = BodyGraphQL
		vars := b.Get("graphql.variables")
		body.GraphQL = &GraphQL{
			Query:     b.Get("graphql.query").String(),
			Variables: vars.String(),
		}
	}
	return body
}

func convertAuth(a gjson.Result) Auth {
	t := a.Get("type").String()
	switch t {
	case "noauth", "":
		return Auth{Mode: AuthNone}
	case "basic":
		return Auth{Mode: AuthBasic, Basic: &UserPass{
			Username: authParam(a, t, "username"),
			Password: authParam(a, t, "password"),
		}}
	case "digest":
		return Auth{Mode: AuthDigest, Digest: &UserPass{
			Username: authParam(a, t, "username"),
			Password: authParam(a, t, "password"),
		}}
	case "bearer":
		return Auth{Mode: AuthBearer, Bearer: &Bearer{Token: authParam(a, t, "token")}}
	case "apikey":
		placement := "header"
		if authParam(a, t, "in") == "query" {
			placement = "queryparams"
		}
		return Auth{Mode: AuthAPIKey, APIKey: &APIKey{
			Key:       authParam(a, t, "key"),
			Value:     authParam(a, t, "value"),
			Placement: placement,
		}}
	case "oauth2":
		return Auth{Mode: AuthOAuth2, OAuth2: &OAuth2{
			GrantType:        oauth2GrantType(authParam(a, t, "grant_type")),
			AuthorizationURL: authParam(a, t, "authUrl"),
			AccessTokenURL:   authParam(a, t, "accessTokenUrl"),
			CallbackURL:      authParam(a, t, "redirect_uri"),
			ClientID:         authParam(a, t, "clientId"),
			ClientSecret:     authParam(a, t, "clientSecret"),
			Scope:            authParam(a, t, "scope"),
			State:            authParam(a, t, "state"),
			Username:         authParam(a, t, "username"),
			Password:         authParam(a, t, "password"),
			PKCE:             authParam(a, t, "grant_type") == "authorization_code_with_pkce",
		}}
	case "awsv4":
		return Auth{Mode: AuthAWSV4, AWSV4: &AWSV4{
			AccessKeyID:     authParam(a, t, "accessKey"),
			SecretAccessKey: authParam(a, t, "secretKey"),
			SessionToken:    authParam(a, t, "sessionToken"),
			Service:         authParam(a, t, "service"),
			Region:          authParam(a, t, "region"),
		}}
	default:
		return Auth{Mode: AuthNone}
	}
}

// authParam reads one auth attribute. v2.1 stores attributes as a
// [{key, value}] array, v2.0 as an object.
func authParam(a gjson.Result, authType, key string) string {
	params := a.Get(authType)
	if params.IsArray() {
		for _, p := range params.Array() {
			if p.Get("key").String() == key {
				return p.Get("value").String()
			}
		}
		return ""
	}
	return params.Get(key).String()
}

func oauth2GrantType(pm string) string {
	switch pm {
	case "authorization_code", "authorization_code_with_pkce":
		return "authorization_code"
	case "password_credentials":
		return "password"
	case "implicit":
		return "implicit"
	default:
		return "client_credentials"
	}
}

func (g *uidGen) convertVariables(vars gjson.Result) []KeyValue {
	var out []KeyValue
	vars.ForEach(func(_, v gjson.Result) bool {
		key := v.Get("key").String()
		if key == "" {
			return true
		}
		out = append(out, KeyValue{
			UID:     g.next(),
			Name:    key,
			Value:   v.Get("value").String(),
			Enabled: !v.Get("disabled").Bool(),
		})
		return true
	})
	return out
}

// eventScript joins the exec lines of every event listening on listen.
func eventScript(events gjson.Result, listen string) string {
	var chunks []string
	events.ForEach(func(_, ev gjson.Result) bool {
		if ev.Get("listen").String() != listen {
			return true
		}
		if s := joinParts(ev.Get("script.exec"), "\n"); strings.TrimSpace(s) != "" {
			chunks = append(chunks, s)
		}
		return true
	})
	return strings.Join(chunks, "\n")
}

// description accepts a plain string or a {content, type} object.
func description(d gjson.Result) string {
	if d.IsObject() {
		return d.Get("content").String()
	}
	return d.String()
}

// unwrapEnvelope strips {"<key>": {...}} when the document lacks marker.
func unwrapEnvelope(doc []byte, key, marker string) []byte {
	if gjson.GetBytes(doc, marker).Exists() {
		return doc
	}
	if inner := gjson.GetBytes(doc, key); inner.IsObject() {
		return []byte(inner.Raw)
	}
	return doc
}
