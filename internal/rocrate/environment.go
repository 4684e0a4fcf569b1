package rocrate

import (
	"fmt"
	"sort"
)

// Environment describes a testbed an artifact can be reproduced on.
type Environment struct {
	Name string
	URL  string
}

// DefaultEnvironment is used when no environment is requested.
const DefaultEnvironment = "chameleon"

var environments = map[string]Environment{
	"chameleon": {
		Name: "Chameleon Cloud testbed",
		URL:  "https://www.chameleoncloud.org",
	},
}

// LookupEnvironment returns the registered environment for key.
func LookupEnvironment(key string) (Environment, error) {
	env, ok := environments[key]
	if !ok {
		return Environment{}, fmt.Errorf("unknown environment %q (known: %v)", key, EnvironmentKeys())
	}
	return env, nil
}

// EnvironmentKeys lists the registered environment keys.
func EnvironmentKeys() []string {
	keys := make([]string, 0, len(environments))
	for k := range environments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
