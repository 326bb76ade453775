// Package config builds the explicit run configuration for brunomigrate from
// environment variables, an optional .env file, an optional config file and
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Configuration keys. The lower-case folder and toggle names match the
// variables operators already keep in their .env files.
const (
	KeyAPIURL              = "postman_api_url"
	KeyAPIKey              = "postman_api_key"
	KeyLogLevel            = "log_level"
	KeyOutputDir           = "output_dir"
	KeyPostmanFolder       = "postman_files_folder"
	KeyBrunoFolder         = "bruno_files_folder"
	KeyBrunoProjectsFolder = "bruno_projects_folder"
	KeyGetWorkspaceList    = "get_workspace_list"
	KeyExportWorkspaces    = "export_postman_workspaces"
	KeyConvertToBruno      = "convert_to_bruno_import_format"
	KeyImportToBruno       = "import_to_bruno"
	KeySkipAlreadyExported = "skip_already_exported"
	KeyBruCommand          = "bru_command"
	KeyHTTPTimeout         = "http_timeout"
)

const (
	DefaultAPIURL              = "https://api.getpostman.com"
	DefaultLogLevel            = "info"
	DefaultOutputDir           = "output"
	DefaultPostmanFolder       = "postman-files"
	DefaultBrunoFolder         = "bruno-files"
	DefaultBrunoProjectsFolder = "bruno-projects"
	DefaultBruCommand          = "bru"

	// StatusFileName is the append-only export ledger written under OutputDir.
	StatusFileName = "export_status.csv"
)

// ErrMissingAPIKey is returned by RequireAPIKey when no Postman API key is set.
var ErrMissingAPIKey = errors.New("POSTMAN_API_KEY is not set")

// Config is the complete, explicit configuration of one run. It is built once
// at startup and handed to each component's constructor.
type Config struct {
	APIURL              string
	APIKey              string
	LogLevel            string
	OutputDir           string
	PostmanFolder       string
	BrunoFolder         string
	BrunoProjectsFolder string
	BruCommand          string
	HTTPTimeout         time.Duration

	// Run-mode toggles, executed in this order by the root command.
	GetWorkspaceList    bool
	ExportWorkspaces    bool
	ConvertToBruno      bool
	ImportToBruno       bool
	SkipAlreadyExported bool
}

type binding struct {
	key  string
	def  any
	envs []string
}

var bindings = []binding{
	{KeyAPIURL, DefaultAPIURL, []string{"POSTMAN_API_URL"}},
	{KeyAPIKey, "", []string{"POSTMAN_API_KEY"}},
	{KeyLogLevel, DefaultLogLevel, []string{"LOG_LEVEL"}},
	{KeyOutputDir, DefaultOutputDir, []string{"OUTPUT_DIR"}},
	{KeyPostmanFolder, DefaultPostmanFolder, []string{"postman_files_folder", "POSTMAN_FILES_FOLDER"}},
	{KeyBrunoFolder, DefaultBrunoFolder, []string{"bruno_files_folder", "BRUNO_FILES_FOLDER"}},
	{KeyBrunoProjectsFolder, DefaultBrunoProjectsFolder, []string{"bruno_projects_folder", "BRUNO_PROJECTS_FOLDER"}},
	{KeyGetWorkspaceList, "false", []string{"get_workspace_list", "GET_WORKSPACE_LIST"}},
	{KeyExportWorkspaces, "false", []string{"export_postman_workspaces", "EXPORT_POSTMAN_WORKSPACES"}},
	{KeyConvertToBruno, "false", []string{"convert_to_bruno_import_format", "CONVERT_TO_BRUNO_IMPORT_FORMAT"}},
	{KeyImportToBruno, "false", []string{"import_to_bruno", "IMPORT_TO_BRUNO"}},
	{KeySkipAlreadyExported, "false", []string{"skip_already_exported", "SKIP_ALREADY_EXPORTED"}},
	{KeyBruCommand, DefaultBruCommand, []string{"BRU_COMMAND"}},
	{KeyHTTPTimeout, "0s", []string{"HTTP_TIMEOUT"}},
}

// Bind registers defaults and environment variable names on v.
func Bind(v *viper.Viper) error {
	for _, b := range bindings {
		v.SetDefault(b.key, b.def)
		if err := v.BindEnv(append([]string{b.key}, b.envs...)...); err != nil {
			return fmt.Errorf("binding %s: %w", b.key, err)
		}
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; malformed files are an error.
// Variables already present in the environment win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ReadFile points v at an explicit config file (YAML, JSON or TOML by
// extension) and reads it.
func ReadFile(v *viper.Viper, path string) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("expanding %s: %w", path, err)
	}
	v.SetConfigFile(expanded)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", expanded, err)
	}
	return nil
}

// Load builds a Config from v. Bind must have been called first.
func Load(v *viper.Viper) (*Config, error) {
	outputDir, err := homedir.Expand(v.GetString(KeyOutputDir))
	if err != nil {
		return nil, fmt.Errorf("expanding %s: %w", KeyOutputDir, err)
	}

	timeout, err := parseDuration(v.GetString(KeyHTTPTimeout))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyHTTPTimeout, err)
	}

	c := &Config{
		APIURL:              strings.TrimRight(v.GetString(KeyAPIURL), "/"),
		APIKey:              v.GetString(KeyAPIKey),
		LogLevel:            v.GetString(KeyLogLevel),
		OutputDir:           outputDir,
		PostmanFolder:       v.GetString(KeyPostmanFolder),
		BrunoFolder:         v.GetString(KeyBrunoFolder),
		BrunoProjectsFolder: v.GetString(KeyBrunoProjectsFolder),
		BruCommand:          v.GetString(KeyBruCommand),
		HTTPTimeout:         timeout,

		GetWorkspaceList:    IsTrue(v.GetString(KeyGetWorkspaceList)),
		ExportWorkspaces:    IsTrue(v.GetString(KeyExportWorkspaces)),
		ConvertToBruno:      IsTrue(v.GetString(KeyConvertToBruno)),
		ImportToBruno:       IsTrue(v.GetString(KeyImportToBruno)),
		SkipAlreadyExported: IsTrue(v.GetString(KeySkipAlreadyExported)),
	}

	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	return c, nil
}

// IsTrue reports whether s is the case-insensitive string "true".
func IsTrue(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}

// RequireAPIKey fails when stages that talk to Postman have no credentials.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// PostmanDir is the export base: <output>/<postman_files_folder>.
func (c *Config) PostmanDir() string {
	return filepath.Join(c.OutputDir, c.PostmanFolder)
}

// BrunoDir is the converted-output base: <output>/<bruno_files_folder>.
func (c *Config) BrunoDir() string {
	return filepath.Join(c.OutputDir, c.BrunoFolder)
}

// ProjectsDir is the working directory handed to the bru CLI.
func (c *Config) ProjectsDir() string {
	return filepath.Join(c.OutputDir, c.BrunoProjectsFolder)
}

// StatusPath is the location of the export ledger CSV.
func (c *Config) StatusPath() string {
	return filepath.Join(c.OutputDir, StatusFileName)
}

// AnyStage reports whether at least one run-mode toggle is enabled.
func (c *Config) AnyStage() bool {
	return c.GetWorkspaceList || c.ExportWorkspaces || c.ConvertToBruno || c.ImportToBruno
}

// DotEnv returns c as the variables an operator keeps in a .env file.
func (c *Config) DotEnv() map[string]string {
	return map[string]string{
		"POSTMAN_API_URL":      c.APIURL,
		"POSTMAN_API_KEY":      c.APIKey,
		"LOG_LEVEL":            c.LogLevel,
		"OUTPUT_DIR":           c.OutputDir,
		KeyPostmanFolder:       c.PostmanFolder,
		KeyBrunoFolder:         c.BrunoFolder,
		KeyBrunoProjectsFolder: c.BrunoProjectsFolder,
		KeyGetWorkspaceList:    strconv.FormatBool(c.GetWorkspaceList),
		KeyExportWorkspaces:    strconv.FormatBool(c.ExportWorkspaces),
		KeyConvertToBruno:      strconv.FormatBool(c.ConvertToBruno),
		KeyImportToBruno:       strconv.FormatBool(c.ImportToBruno),
		KeySkipAlreadyExported: strconv.FormatBool(c.SkipAlreadyExported),
		"BRU_COMMAND":          c.BruCommand,
	}
}

// WriteDotEnv writes env to path, replacing any existing file.
func WriteDotEnv(path string, env map[string]string) error {
	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
