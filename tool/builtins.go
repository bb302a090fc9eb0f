package tool

// Builtins returns the fixed registry of built-in tool categories in
// declaration order. The values are the assistant's stable capability
// catalog; construction is deterministic and side-effect-free.
func Builtins() []Registration {
	return []Registration{
		{
			Name:   "code_analysis",
			Origin: OriginBuiltin,
			Status: StatusReady,
			Descriptor: NewCatalog(
				[]string{"python", "java", "cpp", "matlab"},
				[]string{"linting", "formatting", "static_analysis"},
			),
		},
		{
			Name:   "simulation",
			Origin: OriginBuiltin,
			Status: StatusReady,
			Descriptor: NewEngine(
				[]string{"finite_element", "numerical", "control_systems"},
				[]string{"numpy", "scipy", "control"},
			),
		},
		{
			Name:   "documentation",
			Origin: OriginBuiltin,
			Status: StatusReady,
			Descriptor: NewFormat(
				[]string{"markdown", "pdf", "html"},
				[]string{"technical_spec", "design_doc", "api_doc"},
			),
		},
		{
			Name:   "version_control",
			Origin: OriginBuiltin,
			Status: StatusReady,
			Descriptor: NewOperational(
				[]string{"git"},
				[]string{"commit", "branch", "merge", "review"},
			),
		},
		{
			Name:   "project_management",
			Origin: OriginBuiltin,
			Status: StatusReady,
			Descriptor: NewTracking(
				[]string{"jira", "trello", "azure_devops"},
				[]string{"task_tracking", "timeline_management"},
			),
		},
	}
}

// BuiltinRegistration returns the built-in registration for name.
func BuiltinRegistration(name string) (Registration, bool) {
	for _, reg := range Builtins() {
		if reg.Name == name {
			return reg, true
		}
	}
	return Registration{}, false
}
