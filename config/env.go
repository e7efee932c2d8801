//
// Copyright 2024 - 2026 Flight-HAL Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package config

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const envPrefix = "HAL_"

// LoadEnvironmentLayer builds the Environment layer (§4.K) from a process
// environment slice (os.Environ()'s "KEY=VALUE" shape), keeping only
// HAL_-prefixed variables and stripping the prefix, the same split-on-"="
// parsing utils.GetEnvVarInfo used for a single variable at a time.
func LoadEnvironmentLayer(environ []string) Layer {
	values := make(map[string]string)
	for _, kv := range environ {
		name, value, ok := splitEnvVar(kv)
		if !ok || !strings.HasPrefix(name, envPrefix) {
			continue
		}
		values[strings.TrimPrefix(name, envPrefix)] = value
	}
	return Layer{Name: LayerEnvironment, Values: values}
}

func splitEnvVar(kv string) (name, value string, ok bool) {
	idx := strings.IndexByte(kv, '=')
	if idx < 0 {
		return "", "", false
	}
	return kv[:idx], kv[idx+1:], true
}

// ParseLogLevel resolves HAL_DEFAULT_LOG_LEVEL (§6): unrecognized values
// fall back to Warning.
func ParseLogLevel(value string) logrus.Level {
	lvl, err := logrus.ParseLevel(value)
	if err != nil {
		return logrus.WarnLevel
	}
	return lvl
}
