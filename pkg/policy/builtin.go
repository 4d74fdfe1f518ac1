package policy

// GetBuiltinPolicies returns all built-in policies.
func GetBuiltinPolicies() []Policy {
	return []Policy{
		duplicateParametersPolicy(),
		templateKeysPolicy(),
		emptyValuesPolicy(),
		sweepSizePolicy(),
		parameterNamingPolicy(),
		unusedOptionsPolicy(),
	}
}

// duplicateParametersPolicy rejects options that would overwrite each other
// in the parameters map or in the placeholder table.
func duplicateParametersPolicy() Policy {
	return Policy{
		Name:        "duplicate-parameters",
		Description: "Each option must report its values under a distinct parameter name",
		Severity:    SeverityError,
		Enabled:     true,
		Tags:        []string{"parameters"},
		Rego: `package muffler.policies.parameters

import rego.v1

deny contains violation if {
	some i, j
	first := input.options[i]
	second := input.options[j]
	i < j
	first.param == second.param
	violation := {
		"message": sprintf("options %q and %q both report parameter %q", [first.name, second.name, first.param]),
		"severity": "error",
		"option": second.name,
	}
}

deny contains violation if {
	some i, j
	first := input.options[i]
	second := input.options[j]
	i < j
	first.name == second.name
	first.param != second.param
	violation := {
		"message": sprintf("option name %q is declared more than once", [first.name]),
		"severity": "error",
		"option": second.name,
	}
}`,
	}
}

// templateKeysPolicy rejects templates referencing keys no option provides.
// Such a sweep fails on its first combination.
func templateKeysPolicy() Policy {
	return Policy{
		Name:        "template-keys",
		Description: "Every template placeholder must be provided by an option",
		Severity:    SeverityError,
		Enabled:     true,
		Tags:        []string{"template"},
		Rego: `package muffler.policies.template

import rego.v1

deny contains violation if {
	input.total > 0
	some key in input.placeholders
	not key in input.keys
	violation := {
		"message": sprintf("template placeholder {%s} is not provided by any option", [key]),
		"severity": "error",
	}
}`,
	}
}

// emptyValuesPolicy warns about options without values, which make the whole
// sweep empty.
func emptyValuesPolicy() Policy {
	return Policy{
		Name:        "empty-values",
		Description: "Options should declare at least one value",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"values"},
		Rego: `package muffler.policies.values

import rego.v1

deny contains violation if {
	some opt in input.options
	opt.values == 0
	violation := {
		"message": sprintf("option %q has no values, so the sweep expands to nothing", [opt.name]),
		"severity": "warning",
		"option": opt.name,
	}
}`,
	}
}

// sweepSizePolicy warns about very large search spaces.
func sweepSizePolicy() Policy {
	return Policy{
		Name:        "sweep-size",
		Description: "Warns when a sweep expands to more combinations than the configured limit",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"size"},
		Rego: `package muffler.policies.size

import rego.v1

deny contains violation if {
	input.limits.max_size > 0
	input.total > input.limits.max_size
	violation := {
		"message": sprintf("sweep expands to %v combinations, above the limit of %v", [input.total, input.limits.max_size]),
		"severity": "warning",
	}
}`,
	}
}

// parameterNamingPolicy warns about parameter names that are awkward to use
// as identifiers downstream.
func parameterNamingPolicy() Policy {
	return Policy{
		Name:        "parameter-naming",
		Description: "Parameter names should be identifiers (letters, digits, underscores)",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"naming", "parameters"},
		Rego: `package muffler.policies.naming

import rego.v1

deny contains violation if {
	some opt in input.options
	not regex.match("^[A-Za-z_][A-Za-z0-9_]*$", opt.param)
	violation := {
		"message": sprintf("parameter %q of option %q is not an identifier", [opt.param, opt.name]),
		"severity": "warning",
		"option": opt.name,
	}
}`,
	}
}

// unusedOptionsPolicy reports options whose text never reaches the command.
// Their values still vary the parameters, which is sometimes intended.
func unusedOptionsPolicy() Policy {
	return Policy{
		Name:        "unused-options",
		Description: "Reports options that contribute to no template placeholder",
		Severity:    SeverityInfo,
		Enabled:     true,
		Tags:        []string{"template"},
		Rego: `package muffler.policies.unused

import rego.v1

referenced(opt) if {
	some key in opt.keys
	key in input.placeholders
}

deny contains violation if {
	some opt in input.options
	not referenced(opt)
	violation := {
		"message": sprintf("option %q is not referenced by the command template", [opt.name]),
		"severity": "info",
		"option": opt.name,
	}
}`,
	}
}
