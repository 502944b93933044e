package main

func add(a, b int) int {
	return a + b
}

func main() {
	x := add(2, 3)
	println(x)
}
