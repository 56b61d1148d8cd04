// ABOUTME: Minimal flag parsing for subcommands: --name value, --name=value and boolean switches
// ABOUTME: Unknown flags are rejected so typos never silently change what a command does

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parsedArgs holds flag values and positional arguments in order.
type parsedArgs struct {
	values     map[string]string
	switches   map[string]bool
	positional []string
}

// parseArgs reads args against the allowed value flags and boolean switches.
// Short aliases map to their long name, e.g. {"-y": "yes"}.
func parseArgs(args []string, valueFlags, switchFlags []string, aliases map[string]string) (*parsedArgs, error) {
	p := &parsedArgs{values: map[string]string{}, switches: map[string]bool{}}

	isValue := make(map[string]bool, len(valueFlags))
	for _, f := range valueFlags {
		isValue[f] = true
	}
	isSwitch := make(map[string]bool, len(switchFlags))
	for _, f := range switchFlags {
		isSwitch[f] = true
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			p.positional = append(p.positional, arg)
			continue
		}
		if arg == "--" {
			p.positional = append(p.positional, args[i+1:]...)
			break
		}

		name, value, hasValue := strings.Cut(arg, "=")
		if long, ok := aliases[name]; ok {
			name = long
		} else {
			name = strings.TrimLeft(name, "-")
		}

		switch {
		case isSwitch[name]:
			if hasValue {
				b, err := strconv.ParseBool(value)
				if err != nil {
					return nil, fmt.Errorf("--%s expects true or false, got %q", name, value)
				}
				p.switches[name] = b
			} else {
				p.switches[name] = true
			}
		case isValue[name]:
			if !hasValue {
				if i+1 >= len(args) {
					return nil, fmt.Errorf("--%s requires a value", name)
				}
				value = args[i+1]
				i++
			}
			p.values[name] = value
		default:
			return nil, fmt.Errorf("unknown flag: %s", arg)
		}
	}
	return p, nil
}

func (p *parsedArgs) value(name string) string {
	return p.values[name]
}

func (p *parsedArgs) has(name string) bool {
	_, ok := p.values[name]
	return ok
}

func (p *parsedArgs) switchOn(name string) bool {
	return p.switches[name]
}

// intValue returns the flag as an int, or def when absent.
func (p *parsedArgs) intValue(name string, def int) (int, error) {
	raw, ok := p.values[name]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("--%s expects a number, got %q", name, raw)
	}
	return n, nil
}
