package main

import "github.com/atlasdatatech/geofix/cmd/geofix/cmd"

func main() {
	cmd.Execute()
}
