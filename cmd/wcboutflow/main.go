/*
Copyright © 2024 the wcboutflow authors.
This file is part of wcboutflow.

wcboutflow is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

wcboutflow is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with wcboutflow.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command wcboutflow is a command-line interface for the warm conveyor
// belt outflow analysis.
package main

import (
	"fmt"
	"os"

	"github.com/atmosmodel/wcboutflow/wcboutflowutil"
)

func main() {
	if err := wcboutflowutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
