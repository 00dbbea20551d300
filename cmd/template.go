// cmd/template.go
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ucook/accessflow/service"
)

func TemplateCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "csv-template",
		Short: "print the grant import CSV template",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := service.GrantCSVTemplate()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func VersionCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(Version)
		},
	}
}
