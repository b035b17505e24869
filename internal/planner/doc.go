// Package planner implements a basic Rapidly-exploring Random Tree (RRT)
// path planner in a bounded square workspace with point obstacles.
//
// The planner moves through three states:
//
//	Growing --(node within GoalRadius of goal)--> GoalReached
//	Growing --(MaxIter iterations consumed)-----> Exhausted
//
// Every iteration counts toward MaxIter, including those whose candidate node
// is rejected for colliding with an obstacle. Random samples come from a
// generator owned by the planner, so two planners built with the same seed and
// inputs grow identical trees.
//
// SavePlot renders a tree, its obstacles, the start and the goal with gonum/plot.
package planner
