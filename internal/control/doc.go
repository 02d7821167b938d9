// Package control provides the controller variants of the robot brain.
//
// Controllers implement [robot.Controller] and write one command per motor
// output on every update:
//
//   - [NeuralNetwork]: single layer network over sensors and a clock signal
//   - [Spline]: periodic spline per motor output
//   - [CPG]: coupled oscillators, one per motor, with directly encoded
//     weights or weights generated by a [CPPN]
//   - [IMC]: decorator that corrects the commands of an inner controller
//     with an online-learned tracking model
//
// Every variant also implements [robot.Parametric] so that learners can tune
// it.
//
// # Usage
//
//	cpg, err := control.NewCPG(motors, attrs, nil)
//	wrapped, err := control.NewIMC(cpg, motors, params, store, logger)
//	wrapped.Update(motors, sensors, t, dt)
package control
