// Package http provides the JSON response helpers used by the diagnostics
// routes.
//
//	res := gohttp.NewResponse(w)
//	res.Success(plan)            // 200 {"data": plan}
//	res.NotFound()               // 404 {"message": "Not found."}
//	res.Problem(err)             // status and kind derived from err
package http
