// Backend listing for CLI commands.
//
// Information Hiding:
// - Backend capability lookup hidden
// - Output formatting hidden

package cli

import (
	"fmt"
	"sort"

	"github.com/richinex/midline/config"
	"github.com/richinex/midline/llm"
)

// ListBackends prints the supported backends with their default models and
// fill-in-middle capability.
func ListBackends() {
	names := config.SupportedBackends()
	sort.Strings(names)

	fmt.Println("Supported backends:")
	fmt.Println()

	for _, name := range names {
		modelName, err := config.ModelFor(name)
		if err != nil {
			continue
		}

		strategy := "hole-filling"
		if llm.ModelSupportsFIM(modelName) {
			strategy = "fill-in-middle"
		}

		fmt.Printf("  %s\n", name)
		fmt.Printf("    Model: %s\n", modelName)
		fmt.Printf("    Strategy: %s\n", strategy)

		backendType, err := llm.ParseBackendType(name)
		if err == nil {
			if envVar := backendType.EnvVar(); envVar != "" {
				fmt.Printf("    API key: %s\n", envVar)
			} else {
				fmt.Printf("    API key: not required\n")
			}
		}
		fmt.Println()
	}
}
