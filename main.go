package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/greenplate/campus-client/cmd/app"
)

// @title       GreenPlate payment widget host
// @version     1.0
// @description Local pages and callbacks used to run the hosted payment widget.
//
// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
