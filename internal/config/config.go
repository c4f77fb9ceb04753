package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/lehigh-university-libraries/imgdedupe/internal/dataset"
	"github.com/lehigh-university-libraries/imgdedupe/internal/dedupe"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is read from the working directory when --config is not given
	DefaultFile = "imgdedupe.yaml"
	// DefaultInput is the dataset deduplicated in place
	DefaultInput = "public/webp-images.csv"
)

// Environment variables, usually provided through .env
const (
	EnvInput        = "IMGDEDUPE_INPUT"
	EnvBackupDir    = "IMGDEDUPE_BACKUP_DIR"
	EnvMarker       = "IMGDEDUPE_MARKER"
	EnvReport       = "IMGDEDUPE_REPORT"
	EnvHistory      = "IMGDEDUPE_HISTORY"
	EnvKeepMetadata = "IMGDEDUPE_KEEP_METADATA"
)

const (
	ErrCodeNotFound = "config_not_found"
	ErrCodeInvalid  = "config_invalid"
)

// Error is a configuration error tagged with a code
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s: config file %q not found", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %q: %v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s: %q", e.Code, e.Path)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code extracts the error code, or "" if err is not an *Error
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// FileConfig mirrors imgdedupe.yaml
type FileConfig struct {
	Input        string `yaml:"input"`
	BackupDir    string `yaml:"backup_dir"`
	DecorField   string `yaml:"decor_field"`
	ImageField   string `yaml:"image_field"`
	Marker       string `yaml:"marker"`
	Report       string `yaml:"report"`
	History      string `yaml:"history"`
	KeepMetadata *bool  `yaml:"keep_metadata"`
}

// Overrides are values given on the command line. Empty strings and nil mean "not set".
type Overrides struct {
	Input        string
	BackupDir    string
	DecorField   string
	ImageField   string
	Marker       string
	Report       string
	History      string
	KeepMetadata *bool
}

// Effective is the merged configuration consumed by the commands
type Effective struct {
	Input        string
	BackupDir    string
	Fields       dataset.Fields
	Marker       string
	Report       string
	History      string
	KeepMetadata bool
}

// Load merges defaults, the config file, the environment and overrides, in
// increasing order of precedence.
//
// When path is empty DefaultFile is used if it exists. An explicit path must exist.
func Load(path string, ov Overrides) (Effective, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	fc, err := readFile(path, explicit)
	if err != nil {
		return Effective{}, err
	}

	eff := Effective{
		Input:  DefaultInput,
		Fields: dataset.DefaultFields(),
		Marker: dedupe.DefaultMarker,
	}

	// file
	setString(&eff.Input, fc.Input)
	setString(&eff.BackupDir, fc.BackupDir)
	setString(&eff.Fields.DecorID, fc.DecorField)
	setString(&eff.Fields.ImageURL, fc.ImageField)
	setString(&eff.Marker, fc.Marker)
	setString(&eff.Report, fc.Report)
	setString(&eff.History, fc.History)
	if fc.KeepMetadata != nil {
		eff.KeepMetadata = *fc.KeepMetadata
	}

	// environment
	setString(&eff.Input, os.Getenv(EnvInput))
	setString(&eff.BackupDir, os.Getenv(EnvBackupDir))
	setString(&eff.Marker, os.Getenv(EnvMarker))
	setString(&eff.Report, os.Getenv(EnvReport))
	setString(&eff.History, os.Getenv(EnvHistory))
	if v := os.Getenv(EnvKeepMetadata); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Effective{}, &Error{Code: ErrCodeInvalid, Path: EnvKeepMetadata, Err: err}
		}
		eff.KeepMetadata = b
	}

	// command line
	setString(&eff.Input, ov.Input)
	setString(&eff.BackupDir, ov.BackupDir)
	setString(&eff.Fields.DecorID, ov.DecorField)
	setString(&eff.Fields.ImageURL, ov.ImageField)
	setString(&eff.Marker, ov.Marker)
	setString(&eff.Report, ov.Report)
	setString(&eff.History, ov.History)
	if ov.KeepMetadata != nil {
		eff.KeepMetadata = *ov.KeepMetadata
	}

	if eff.Fields.DecorID == eff.Fields.ImageURL {
		return Effective{}, &Error{Code: ErrCodeInvalid, Path: path, Err: fmt.Errorf("decor_field and image_field are both %q", eff.Fields.DecorID)}
	}

	return eff, nil
}

func readFile(path string, explicit bool) (FileConfig, error) {
	var fc FileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return fc, &Error{Code: ErrCodeNotFound, Path: path, Err: err}
			}
			return fc, nil
		}
		return fc, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fc, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}
	return fc, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
