package mcpserver

import "fmt"

// parseStringArg extracts a string argument from an MCP arguments map.
// Returns an error if the argument is required but missing or invalid.
func parseStringArg(argsMap map[string]interface{}, key string, required bool) (string, error) {
	val, ok := argsMap[key]
	if !ok {
		if required {
			return "", fmt.Errorf("%s parameter is required", key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	if required && str == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}
	return str, nil
}

// parseInt64Arg extracts an integer argument from an MCP arguments map.
// MCP sends numbers as float64, so this handles the conversion.
// Returns defaultVal if the argument is missing or invalid.
func parseInt64Arg(argsMap map[string]interface{}, key string, defaultVal int64) int64 {
	val, ok := argsMap[key]
	if !ok {
		return defaultVal
	}
	if f, ok := val.(float64); ok {
		return int64(f)
	}
	return defaultVal
}

// parseArrayArg extracts a string array argument from an MCP arguments
// map. Returns nil if the argument is missing; non-string elements are
// dropped.
func parseArrayArg(argsMap map[string]interface{}, key string) []string {
	val, ok := argsMap[key]
	if !ok {
		return nil
	}
	arr, ok := val.([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(arr))
	for _, item := range arr {
		if str, ok := item.(string); ok {
			result = append(result, str)
		}
	}
	return result
}
