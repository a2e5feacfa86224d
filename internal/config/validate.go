package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"tarbackup/internal/cmdline"
)

var (
	itemValidator     *validator.Validate
	itemValidatorOnce sync.Once
)

func getItemValidator() *validator.Validate {
	itemValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("toml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		// Registration only fails for empty tags or nil funcs.
		_ = v.RegisterValidation("itemname", validateItemName)
		_ = v.RegisterValidation("command", validateCommand)
		_ = v.RegisterValidation("taropts", validateCommand)
		itemValidator = v
	})
	return itemValidator
}

// Names end up as directory and file name components.
func validateItemName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}

func validateCommand(fl validator.FieldLevel) bool {
	_, err := cmdline.Split(fl.Field().String())
	return err == nil
}

// Validate ensures the script-wide settings are usable. Item problems are not
// reported here; see Load.
func (c *Config) Validate() error {
	if err := c.validatePolicies(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateScriptActions(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePolicies() error {
	switch c.ExitPolicy {
	case ExitPolicyLenient, ExitPolicyStrict:
	default:
		return fmt.Errorf("exit_policy: unsupported value %q (want %q or %q)", c.ExitPolicy, ExitPolicyLenient, ExitPolicyStrict)
	}
	switch c.MissingState {
	case MissingStateError, MissingStateFull:
	default:
		return fmt.Errorf("missing_state: unsupported value %q (want %q or %q)", c.MissingState, MissingStateError, MissingStateFull)
	}
	if c.MaxParallel < 0 {
		return errors.New("max_parallel must be >= 0")
	}
	if strings.ContainsAny(c.TarBinary, " \t") {
		return fmt.Errorf("tar_binary: %q must be a single executable name or path", c.TarBinary)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateScriptActions() error {
	if c.PreScriptAction != "" {
		if _, err := cmdline.Split(c.PreScriptAction); err != nil {
			return fmt.Errorf("pre_script_action: %w", err)
		}
	}
	if c.PostScriptAction != "" {
		if _, err := cmdline.Split(c.PostScriptAction); err != nil {
			return fmt.Errorf("post_script_action: %w", err)
		}
	}
	return nil
}

// validateItems moves items that fail the schema, or repeat an earlier name,
// from Items to Rejected.
func (c *Config) validateItems() {
	v := getItemValidator()
	accepted := make([]Item, 0, len(c.Items))
	seen := make(map[string]struct{}, len(c.Items))
	for idx, item := range c.Items {
		if err := v.Struct(item); err != nil {
			c.Rejected = append(c.Rejected, ItemIssue{Index: idx, Name: item.Name, Reason: describeValidation(err)})
			continue
		}
		if _, dup := seen[item.Name]; dup {
			c.Rejected = append(c.Rejected, ItemIssue{Index: idx, Name: item.Name, Reason: "duplicate item name"})
			continue
		}
		seen[item.Name] = struct{}{}
		accepted = append(accepted, item)
	}
	c.Items = accepted
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	reasons := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			reasons = append(reasons, fmt.Sprintf("missing required key %q", fe.Field()))
		case "itemname":
			reasons = append(reasons, fmt.Sprintf("%s %q must not contain path separators", fe.Field(), fe.Value()))
		case "command":
			reasons = append(reasons, fmt.Sprintf("%s %q is not a valid command", fe.Field(), fe.Value()))
		case "taropts":
			reasons = append(reasons, fmt.Sprintf("%s %q must be plain words with shell quoting", fe.Field(), fe.Value()))
		default:
			reasons = append(reasons, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(reasons, "; ")
}
