package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CDCAGG_"

// Defaults for the aggregator deployment.
const (
	DefaultReplicaSet     = "rs_cdcagg"
	DefaultDatabaseName   = "cdcagg"
	DefaultReaderUsername = "reader"
	DefaultReaderPassword = "reader"
	DefaultEditorUsername = "editor"
	DefaultEditorPassword = "editor"
)

var (
	ErrNoReplicas     = errors.New("at least one replica is required")
	ErrNoReplicaSet   = errors.New("replica set name is required")
	ErrNoDatabaseName = errors.New("database name is required")
)

type Arguments struct {
	// Replica host:port pairs. The first one is used to initiate the set.
	Replicas   []string `yaml:"replica"`
	ReplicaSet string   `yaml:"replicaset"`

	DatabaseName string `yaml:"database_name"`

	// Application accounts created by setup_users
	ReaderUsername string `yaml:"database_user_reader"`
	ReaderPassword string `yaml:"database_pass_reader"`
	EditorUsername string `yaml:"database_user_editor"`
	EditorPassword string `yaml:"database_pass_editor"`

	// Admin credentials. Prompted for when not configured. A value that is
	// configured empty is used as is.
	AdminUsername    string `yaml:"database_user_admin,omitempty"`
	AdminPassword    string `yaml:"database_pass_admin,omitempty"`
	adminUsernameSet bool
	adminPasswordSet bool

	// Path of a node-exporter textfile to write run metrics to
	MetricsTextfile string `yaml:"metrics_textfile,omitempty"`

	Debug bool `yaml:"debug"`

	ConfigFile         string `yaml:"-"`
	PrintConfiguration bool   `yaml:"-"`
}

// Defaults returns the built-in configuration.
func Defaults() *Arguments {
	return &Arguments{
		ReplicaSet:     DefaultReplicaSet,
		DatabaseName:   DefaultDatabaseName,
		ReaderUsername: DefaultReaderUsername,
		ReaderPassword: DefaultReaderPassword,
		EditorUsername: DefaultEditorUsername,
		EditorPassword: DefaultEditorPassword,
	}
}

// source binds one setting to its flag and environment variable names.
// An empty environment value is ignored unless keepEmpty is set.
type source struct {
	flag      string
	env       string
	keepEmpty bool
	set       func(a *Arguments, value string)
	copy      func(dst, src *Arguments)
}

var sources = []source{
	{
		flag: "replica", env: "DBREPLICAS",
		set:  func(a *Arguments, v string) { a.Replicas = splitList(v) },
		copy: func(dst, src *Arguments) { dst.Replicas = append([]string(nil), src.Replicas...) },
	},
	{
		flag: "replicaset", env: "DBREPLICASET",
		set:  func(a *Arguments, v string) { a.ReplicaSet = v },
		copy: func(dst, src *Arguments) { dst.ReplicaSet = src.ReplicaSet },
	},
	{
		flag: "database-name", env: "DBNAME",
		set:  func(a *Arguments, v string) { a.DatabaseName = v },
		copy: func(dst, src *Arguments) { dst.DatabaseName = src.DatabaseName },
	},
	{
		flag: "database-user-reader", env: "DBUSER_READER",
		set:  func(a *Arguments, v string) { a.ReaderUsername = v },
		copy: func(dst, src *Arguments) { dst.ReaderUsername = src.ReaderUsername },
	},
	{
		flag: "database-pass-reader", env: "DBPASS_READER",
		set:  func(a *Arguments, v string) { a.ReaderPassword = v },
		copy: func(dst, src *Arguments) { dst.ReaderPassword = src.ReaderPassword },
	},
	{
		flag: "database-user-editor", env: "DBUSER_EDITOR",
		set:  func(a *Arguments, v string) { a.EditorUsername = v },
		copy: func(dst, src *Arguments) { dst.EditorUsername = src.EditorUsername },
	},
	{
		flag: "database-pass-editor", env: "DBPASS_EDITOR",
		set:  func(a *Arguments, v string) { a.EditorPassword = v },
		copy: func(dst, src *Arguments) { dst.EditorPassword = src.EditorPassword },
	},
	{
		flag: "database-user-admin", env: "DBUSER_ADMIN", keepEmpty: true,
		set:  func(a *Arguments, v string) { a.AdminUsername, a.adminUsernameSet = v, true },
		copy: func(dst, src *Arguments) { dst.AdminUsername, dst.adminUsernameSet = src.AdminUsername, true },
	},
	{
		flag: "database-pass-admin", env: "DBPASS_ADMIN", keepEmpty: true,
		set:  func(a *Arguments, v string) { a.AdminPassword, a.adminPasswordSet = v, true },
		copy: func(dst, src *Arguments) { dst.AdminPassword, dst.adminPasswordSet = src.AdminPassword, true },
	},
	{
		flag: "metrics-textfile", env: "METRICS_TEXTFILE",
		set:  func(a *Arguments, v string) { a.MetricsTextfile = v },
		copy: func(dst, src *Arguments) { dst.MetricsTextfile = src.MetricsTextfile },
	},
	{
		flag: "debug", env: "DEBUG",
		set:  func(a *Arguments, v string) { a.Debug = v == "1" || strings.EqualFold(v, "true") },
		copy: func(dst, src *Arguments) { dst.Debug = src.Debug },
	},
}

// Load builds the configuration from defaults, the optional YAML file and
// the environment, in increasing order of precedence. lookupEnv has the
// signature of os.LookupEnv.
func Load(configFile string, lookupEnv func(string) (string, bool)) (*Arguments, error) {
	args := Defaults()
	if configFile != "" {
		if err := args.loadFile(configFile); err != nil {
			return nil, err
		}
	}
	args.ConfigFile = configFile
	for _, s := range sources {
		if v, ok := lookupEnv(EnvPrefix + s.env); ok && (v != "" || s.keepEmpty) {
			s.set(args, v)
		}
	}
	return args, nil
}

func (a *Arguments) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not access config file: %w", err)
	}
	defer f.Close()

	var doc yaml.Node
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		return fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	if err := doc.Decode(a); err != nil {
		return fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	a.markConfigured(&doc)
	return nil
}

// markConfigured records which admin credentials the file sets, including
// empty strings. A null value counts as not set.
func (a *Arguments) markConfigured(doc *yaml.Node) {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i+1].ShortTag() == "!!null" {
			continue
		}
		switch doc.Content[i].Value {
		case "database_user_admin":
			a.adminUsernameSet = true
		case "database_pass_admin":
			a.adminPasswordSet = true
		}
	}
}

// AdminCredentials returns the configured admin username and password. A
// nil value is configured nowhere and has to be asked for.
func (a *Arguments) AdminCredentials() (username, password *string) {
	if a.AdminUsername != "" || a.adminUsernameSet {
		u := a.AdminUsername
		username = &u
	}
	if a.AdminPassword != "" || a.adminPasswordSet {
		p := a.AdminPassword
		password = &p
	}
	return username, password
}

// Overlay copies into a every setting whose flag was given on the command
// line, as reported by changed.
func (a *Arguments) Overlay(flags *Arguments, changed func(flag string) bool) {
	for _, s := range sources {
		if changed(s.flag) {
			s.copy(a, flags)
		}
	}
	a.PrintConfiguration = flags.PrintConfiguration
}

// Validate reports every problem with the configuration at once.
func (a *Arguments) Validate() error {
	var err error
	if len(a.Replicas) == 0 {
		err = multierr.Append(err, ErrNoReplicas)
	}
	for _, r := range a.Replicas {
		if strings.TrimSpace(r) == "" {
			err = multierr.Append(err, fmt.Errorf("empty replica address in %v", a.Replicas))
		}
	}
	if a.ReplicaSet == "" {
		err = multierr.Append(err, ErrNoReplicaSet)
	}
	if a.DatabaseName == "" {
		err = multierr.Append(err, ErrNoDatabaseName)
	}
	return err
}

// Masked returns a copy with every password replaced, for printing.
func (a *Arguments) Masked() *Arguments {
	masked := *a
	masked.Replicas = append([]string(nil), a.Replicas...)
	for _, p := range []*string{&masked.ReaderPassword, &masked.EditorPassword, &masked.AdminPassword} {
		if *p != "" {
			*p = "********"
		}
	}
	return &masked
}

// YAML renders the configuration the way a config file would hold it.
func (a *Arguments) YAML() (string, error) {
	out, err := yaml.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
