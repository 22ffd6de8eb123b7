package exec

import (
	"sort"
	"strconv"
	"strings"

	"github.com/viant/fanout/model/types"
)

// Target labels recognised by the exec action
const (
	LabelURL         = "url"
	LabelCredentials = "credentials"
)

const localhostURL = "bash://localhost/"

// Host represents a command destination
type Host struct {
	URL         string `json:"url"`
	Credentials string `json:"credentials,omitempty"`
}

// Input represents a per-target command run, derived from a sub-job call
type Input struct {
	Host         *Host
	Workdir      string
	Env          map[string]string
	Commands     []string
	TimeoutMs    int
	AbortOnError bool
}

// HostOf derives the host of a target: the "url" label when present,
// localhost for the "localhost" id, ssh://<id> otherwise.
func HostOf(target types.Target) *Host {
	host := &Host{}
	if resource, ok := target.(*types.Resource); ok && resource.Labels != nil {
		host.URL = resource.Labels[LabelURL]
		host.Credentials = resource.Labels[LabelCredentials]
	}
	if host.URL == "" {
		id := target.TargetID()
		switch {
		case id == "localhost":
			host.URL = localhostURL
		case strings.Contains(id, "://"):
			host.URL = id
		default:
			host.URL = "ssh://" + id
		}
	}
	return host
}

// NewInput builds the command input: string args are the commands, the
// trailing options map may carry workdir, env, timeoutMs and abortOnError.
func NewInput(call *types.Call) (*Input, error) {
	target, err := call.RequireTarget()
	if err != nil {
		return nil, err
	}
	ret := &Input{Host: HostOf(target), Commands: call.Strings(), AbortOnError: true}
	options := call.Options()
	if value, ok := options["workdir"].(string); ok {
		ret.Workdir = value
	}
	if value, ok := options["timeoutMs"]; ok {
		ret.TimeoutMs = asInt(value)
	}
	if value, ok := options["abortOnError"].(bool); ok {
		ret.AbortOnError = value
	}
	switch env := options["env"].(type) {
	case map[string]string:
		ret.Env = env
	case map[string]interface{}:
		ret.Env = make(map[string]string, len(env))
		for k, v := range env {
			if text, ok := v.(string); ok {
				ret.Env[k] = text
			}
		}
	}
	return ret, nil
}

func asInt(value interface{}) int {
	switch actual := value.(type) {
	case int:
		return actual
	case int64:
		return int(actual)
	case float64:
		return int(actual)
	case string:
		ret, _ := strconv.Atoi(actual)
		return ret
	}
	return 0
}

// wrap runs cmd in a subshell with workdir and env applied, leaving the
// session shell state untouched.
func (i *Input) wrap(cmd string) string {
	var steps []string
	if i.Workdir != "" {
		steps = append(steps, "cd "+quote(i.Workdir))
	}
	keys := make([]string, 0, len(i.Env))
	for key := range i.Env {
		if isEnvName(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		steps = append(steps, "export "+key+"="+quote(i.Env[key]))
	}
	steps = append(steps, cmd)
	return "(" + strings.Join(steps, " && ") + ")"
}

func quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

func isEnvName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
