// Команда batalert следит за зарядкой батареи и оповещает о достижении порога.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	app := NewApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}
