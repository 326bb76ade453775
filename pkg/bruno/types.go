// Package bruno converts Postman collection and environment documents into
// the JSON import format understood by Bruno and the bru CLI.
package bruno

// Item types.
const (
	TypeFolder         = "folder"
	TypeHTTPRequest    = "http-request"
	TypeGraphQLRequest = "graphql-request"
)

// Collection is a Bruno collection export.
type Collection struct {
	Version      string        `json:"version"`
	UID          string        `json:"uid"`
	Name         string        `json:"name"`
	Items        []Item        `json:"items"`
	Environments []Environment `json:"environments"`
	Root         *Root         `json:"root,omitempty"`
	BrunoConfig  BrunoConfig   `json:"brunoConfig"`
}

// BrunoConfig is the bruno.json content of a collection.
type BrunoConfig struct {
	Version string   `json:"version"`
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Ignore  []string `json:"ignore"`
}

// Root holds collection or folder level settings.
type Root struct {
	Request *RootRequest `json:"request,omitempty"`
	Docs    string       `json:"docs,omitempty"`
	Meta    *Meta        `json:"meta,omitempty"`
}

// Meta names a folder root.
type Meta struct {
	Name string `json:"name"`
}

// RootRequest holds settings inherited by every request below a root.
type RootRequest struct {
	Headers []KeyValue `json:"headers,omitempty"`
	Auth    *Auth      `json:"auth,omitempty"`
	Script  Script     `json:"script"`
	Vars    Vars       `json:"vars"`
	Tests   string     `json:"tests,omitempty"`
}

// Item is a folder or a request.
type Item struct {
	UID     string   `json:"uid"`
	Type    string   `json:"type"`
	Name    string   `json:"name"`
	Seq     int      `json:"seq"`
	Request *Request `json:"request,omitempty"`
	Items   []Item   `json:"items,omitempty"`
	Root    *Root    `json:"root,omitempty"`
}

// Request is the request part of an http or graphql item.
type Request struct {
	URL        string     `json:"url"`
	Method     string     `json:"method"`
	Headers    []KeyValue `json:"headers"`
	Params     []Param    `json:"params"`
	Body       Body       `json:"body"`
	Auth       Auth       `json:"auth"`
	Script     Script     `json:"script"`
	Vars       Vars       `json:"vars"`
	Assertions []KeyValue `json:"assertions"`
	Tests      string     `json:"tests"`
	Docs       string     `json:"docs"`
}

// KeyValue is a header, variable, form field or assertion.
type KeyValue struct {
	UID         string `json:"uid"`
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// Param is a query or path parameter.
type Param struct {
	UID         string `json:"uid"`
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Enabled     bool   `json:"enabled"`
}

// MultipartField is one multipart/form-data part.
type MultipartField struct {
	UID         string `json:"uid"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// Body modes.
const (
	BodyNone           = "none"
	BodyJSON           = "json"
	BodyText           = "text"
	BodyXML            = "xml"
	BodyFormURLEncoded = "formUrlEncoded"
	BodyMultipartForm  = "multipartForm"
	BodyGraphQL        = "graphql"
)

// Body is a request body. Only the field matching Mode is meaningful.
type Body struct {
	Mode           string           `json:"mode"`
	JSON           string           `json:"json,omitempty"`
	Text           string           `json:"text,omitempty"`
	XML            string           `json:"xml,omitempty"`
	FormURLEncoded []KeyValue       `json:"formUrlEncoded"`
	MultipartForm  []MultipartField `json:"multipartForm"`
	GraphQL        *GraphQL         `json:"graphql,omitempty"`
}

// GraphQL is a graphql body.
type GraphQL struct {
	Query     string `json:"query"`
	Variables string `json:"variables"`
}

// Auth modes.
const (
	AuthNone    = "none"
	AuthInherit = "inherit"
	AuthBasic   = "basic"
	AuthBearer  = "bearer"
	AuthDigest  = "digest"
	AuthAPIKey  = "apikey"
	AuthOAuth2  = "oauth2"
	AuthAWSV4   = "awsv4"
)

// Auth configures request authentication.
type Auth struct {
	Mode   string    `json:"mode"`
	Basic  *UserPass `json:"basic,omitempty"`
	Digest *UserPass `json:"digest,omitempty"`
	Bearer *Bearer   `json:"bearer,omitempty"`
	APIKey *APIKey   `json:"apikey,omitempty"`
	OAuth2 *OAuth2   `json:"oauth2,omitempty"`
	AWSV4  *AWSV4    `json:"awsv4,omitempty"`
}

// UserPass holds basic and digest credentials.
type UserPass struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Bearer holds a bearer token.
type Bearer struct {
	Token string `json:"token"`
}

// APIKey holds an api key and where to send it.
type APIKey struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Placement string `json:"placement"`
}

// OAuth2 holds the subset of OAuth 2.0 settings shared by both tools.
type OAuth2 struct {
	GrantType        string `json:"grantType"`
	AuthorizationURL string `json:"authorizationUrl,omitempty"`
	AccessTokenURL   string `json:"accessTokenUrl"`
	CallbackURL      string `json:"callbackUrl,omitempty"`
	ClientID         string `json:"clientId"`
	ClientSecret     string `json:"clientSecret"`
	Scope            string `json:"scope"`
	State            string `json:"state,omitempty"`
	Username         string `json:"username,omitempty"`
	Password         string `json:"password,omitempty"`
	PKCE             bool   `json:"pkce"`
}

// AWSV4 holds AWS Signature v4 settings.
type AWSV4 struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	SessionToken    string `json:"sessionToken"`
	Service         string `json:"service"`
	Region          string `json:"region"`
}

// Script holds pre-request and post-response scripts.
type Script struct {
	Req string `json:"req,omitempty"`
	Res string `json:"res,omitempty"`
}

// Vars holds request and response variables.
type Vars struct {
	Req []KeyValue `json:"req,omitempty"`
	Res []KeyValue `json:"res,omitempty"`
}

// Environment is a Bruno environment.
type Environment struct {
	UID       string     `json:"uid"`
	Name      string     `json:"name"`
	Variables []Variable `json:"variables"`
}

// Variable is one environment variable.
type Variable struct {
	UID     string `json:"uid"`
	Name    string `json:"name"`
	Value   string `json:"value"`
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
	Secret  bool   `json:"secret"`
}
