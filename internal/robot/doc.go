// Package robot defines the capabilities shared by every part of the control
// core:
//
//   - [Motor] and [Sensor]: device handles created outside the core
//   - [Controller]: maps sensor readings and time to motor commands
//   - [Learner]: owns one controller and may replace or tune it
//   - [Evaluator] and [Reporter]: observe the robot once per control cycle
//
// A controller that can be tuned also implements [Parametric]. The learner
// owns its controller exclusively; a controller decorator in turn owns the
// controller it wraps, so the composition is always a tree.
//
// Assembly failures are reported with [ConfigError] and [VariantError],
// which unwrap to [ErrConfiguration], [ErrUnsupportedVariant] and
// [ErrIncompatibleVariants].
package robot
