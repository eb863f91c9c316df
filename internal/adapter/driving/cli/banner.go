package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/diillson/multicloud-finops-go/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(out io.Writer) {
	banner := `
     /$$$$$$$$ /$$            /$$$$$$                     
    | $$_____/|__/           /$$__  $$                    
    | $$       /$$ /$$$$$$$ | $$  \ $$  /$$$$$$   /$$$$$$$
    | $$$$$   | $$| $$__  $$| $$  | $$ /$$__  $$ /$$_____/
    | $$__/   | $$| $$  \ $$| $$  | $$| $$  \ $$|  $$$$$$ 
    | $$      | $$| $$  | $$| $$  | $$| $$  | $$ \____  $$
    | $$      | $$| $$  | $$|  $$$$$$/| $$$$$$$/ /$$$$$$$/
    |__/      |__/|__/  |__/ \______/ | $$____/ |_______/ 
                                      | $$                
                                      |__/                
    `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Fprintln(out, red(banner))
	fmt.Fprintln(out, blue(fmt.Sprintf("Multicloud FinOps CLI (v%s)", version.FormatVersion())))
}
