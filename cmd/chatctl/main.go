package main

import "github.com/mustafizur/chat/backend/cmd/chatctl/cmd"

func main() {
	cmd.Execute()
}
