package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"millis/core"
)

var (
	configsClock uint32

	configsCmd = &cobra.Command{
		Use:   "configs",
		Short: "List legal timer configurations and board profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Timer configurations at %d Hz:\n", configsClock)
			fmt.Println("  PRESCALER  COUNTS  PERIOD")
			for _, cfg := range core.LegalConfigs(configsClock) {
				fmt.Printf("  %9d  %6d  %4d ms\n", cfg.Prescaler, cfg.Counts, cfg.Increment())
			}

			profiles, err := loadProfiles()
			if err != nil {
				return err
			}
			fmt.Println("\nBoard profiles:")
			for _, p := range profiles {
				fmt.Printf("  %-16s %-11s %v  %dms/tick  %d baud\n",
					p.Name, p.MCU, p.TimerConfig(), p.TimerConfig().Increment(), p.Baud)
			}
			return nil
		},
	}
)

func init() {
	configsCmd.Flags().Uint32VarP(&configsClock, "clock", "c", core.ClockFreq, "CPU clock frequency in Hz")
}
