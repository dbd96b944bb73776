// Copyright (c) 2024 TigerDB Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 		http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"fmt"
	"regexp"
)

var validContainerName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidationError 验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateContainerName 验证搜索容器名称
func ValidateContainerName(name string) error {
	if name == "" {
		return &ValidationError{Field: "container", Message: "container name cannot be empty"}
	}

	if len(name) > 255 {
		return &ValidationError{Field: "container", Message: "container name too long (max 255 characters)"}
	}

	if !validContainerName.MatchString(name) {
		return &ValidationError{
			Field:   "container",
			Message: "invalid container name format (only lowercase letters, numbers, hyphens, and underscores allowed)",
		}
	}

	return nil
}
