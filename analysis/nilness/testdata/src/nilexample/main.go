package main

func makeNonNil() *int {
	x := 0
	return &x
}

func pick(cond bool) *int {
	var p *int
	if cond {
		p = makeNonNil()
	} else {
		p = nil
	}
	return p
}

func main() {
	p := pick(true)
	println(p)
}
