package option

// renamed reports an option's value under a different parameter key.
type renamed struct {
	Option
	param string
}

// Rename returns opt reporting its value under param. An empty param returns
// opt unchanged.
func Rename(opt Option, param string) Option {
	if param == "" || param == opt.TransformName() {
		return opt
	}
	return &renamed{Option: opt, param: param}
}

// TransformName returns the overriding parameter key.
func (r *renamed) TransformName() string {
	return r.param
}
