package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(w io.Writer, formattedVersion string) {
	banner := `
   ____      _       _             _         ____  _            _ _
  |  _ \ ___| | __ _| |_ ___  _ __(_) ___   |  _ \(_)_ __   ___| (_)_ __   ___
  | |_) / _ \ |/ _' | __/ _ \| '__| |/ _ \  | |_) | | '_ \ / _ \ | | '_ \ / _ \
  |  _ <  __/ | (_| | || (_) | |  | | (_) | |  __/| | |_) |  __/ | | | | |  __/
  |_| \_\___|_|\__,_|\__\___/|_|  |_|\___/  |_|   |_| .__/ \___|_|_|_| |_|\___|
                                                    |_|
        `
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Fprintln(w, green(banner))
	fmt.Fprintln(w, blue(fmt.Sprintf("Relatório Pipeline CLI (v%s)", formattedVersion)))
}
