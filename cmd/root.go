// Package cmd implements the portal-agent command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "portal-agent",
	Short: "Assistente de fábrica da Tecnoperfil",
	Long: `portal-agent é o serviço de perguntas e respostas do portal da
Tecnoperfil. Ele ingere documentos e planilhas da fábrica, responde
perguntas estruturadas sobre a carteira de encomendas de forma
determinística e usa busca semântica com um modelo de linguagem para
todo o resto.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
