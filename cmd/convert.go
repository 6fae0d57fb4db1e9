package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pharmadata-tools/labqa-cli/internal/chem"
)

var convMolarMass float64

var convertCmd = &cobra.Command{
	Use:   "convert <value> <from-unit> <to-unit>",
	Short: "Convert a concentration between units",
	Long: `Convert translates a concentration between mM, µM, M, mg/mL and g/L.
Conversions involving a mass-based unit need the compound's molar mass
in g/mol (--molar-mass).`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[0], err)
		}
		out, err := chem.ConvertConcentration(value, args[1], args[2], convMolarMass)
		if err != nil {
			return err
		}
		fmt.Printf("%g %s = %g %s\n", value, args[1], out, args[2])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().Float64Var(&convMolarMass, "molar-mass", 0, "compound molar mass in g/mol (required for mg/mL and g/L)")
}
